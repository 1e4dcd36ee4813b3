package config

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
)

// LoadEncodingFixes は文字化け補正表 (タブ区切り) を読み込みます。
// タイトルにカンマが含まれるためタブで区切ります。ファイルがなければ空の表を返します
func LoadEncodingFixes(fs interfaces.FileSystem, path string) (map[string]string, error) {
	return loadTable(fs, path, "\t")
}

// LoadCustomTypes は楽曲ごとの解禁種別の上書き表 (カンマ区切り) を読み込みます
func LoadCustomTypes(fs interfaces.FileSystem, path string) (map[string]string, error) {
	return loadTable(fs, path, ",")
}

func loadTable(fs interfaces.FileSystem, path, sep string) (map[string]string, error) {
	table := make(map[string]string)
	if !fs.FileExists(path) {
		return table, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(data, sep), nil
}

// ParseTable は "キー<sep>値" 形式の行を解析します。
// 区切り文字を含まない行 (先頭のバージョン行など) は読み飛ばし、重複したキーは最初の行を採用します
func ParseTable(data []byte, sep string) map[string]string {
	table := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, sep)
		if !ok {
			continue
		}
		// 3列目以降は無視する
		value, _, _ = strings.Cut(value, sep)
		if _, exists := table[key]; exists {
			continue
		}
		table[key] = strings.TrimSpace(value)
	}
	return table
}
