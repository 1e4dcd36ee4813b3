package config

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
)

// Offsets はゲームのバージョンごとに異なるメモリ上の基準アドレス
type Offsets struct {
	Version      string
	SongList     uint64
	UnlockData   uint64
	JudgeData    uint64
	PlaySettings uint64
	CurrentSong  uint64
	PlayData     uint64
}

// offsetKey はオフセットファイルのキーと格納先
type offsetKey struct {
	name     string
	required bool
	dst      func(*Offsets) *uint64
}

var offsetKeys = []offsetKey{
	{"songList", true, func(o *Offsets) *uint64 { return &o.SongList }},
	{"unlockData", true, func(o *Offsets) *uint64 { return &o.UnlockData }},
	{"judgeData", true, func(o *Offsets) *uint64 { return &o.JudgeData }},
	{"playSettings", true, func(o *Offsets) *uint64 { return &o.PlaySettings }},
	{"currentSong", true, func(o *Offsets) *uint64 { return &o.CurrentSong }},
	{"playData", false, func(o *Offsets) *uint64 { return &o.PlayData }},
}

// LoadOffsets はオフセットファイルを読み込みます
func LoadOffsets(fs interfaces.FileSystem, path string) (*Offsets, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadOffsets, path, err)
	}
	return ParseOffsets(data)
}

// ParseOffsets はオフセットファイルの内容を解析します。
// 1行目はゲームのバージョン、以降は "key = 0x1234" 形式です
func ParseOffsets(data []byte) (*Offsets, error) {
	offsets := &Offsets{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	if scanner.Scan() {
		first := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if !strings.Contains(first, "=") {
			offsets.Version = first
		}
	}

	// バージョン文字列に ":" が含まれるため区切り文字は "=" のみ
	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:         true,
		KeyValueDelimiters:      "=",
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadOffsets, err)
	}

	section := file.Section("")
	for _, k := range offsetKeys {
		if !section.HasKey(k.name) {
			if k.required {
				return nil, fmt.Errorf("%w: %s", ErrMissingOffset, k.name)
			}
			continue
		}
		value, err := parseHex(section.Key(k.name).String())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOffset, k.name, err)
		}
		*k.dst(offsets) = value
	}

	return offsets, nil
}

func parseHex(s string) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "0x")
	return strconv.ParseUint(s, 16, 64)
}

// String はオフセットを確認用の文字列にします
func (o *Offsets) String() string {
	return fmt.Sprintf("version=%s songList=0x%X unlockData=0x%X judgeData=0x%X playSettings=0x%X currentSong=0x%X playData=0x%X",
		o.Version, o.SongList, o.UnlockData, o.JudgeData, o.PlaySettings, o.CurrentSong, o.PlayData)
}
