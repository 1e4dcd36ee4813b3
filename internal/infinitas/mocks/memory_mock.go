package mocks

import (
	"encoding/binary"
	"strconv"

	"golang.org/x/text/encoding/japanese"

	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// SongRecord は SongInfo をゲームのメモリ上と同じ形式のバイト列にします
func SongRecord(song models.SongInfo, bpmMin, bpmMax int32) []byte {
	buf := make([]byte, decoder.SongStride)
	putText(buf, field(decoder.SongLayout, "title"), song.Title)
	putText(buf, field(decoder.SongLayout, "title_english"), song.TitleEnglish)
	putText(buf, field(decoder.SongLayout, "genre"), song.Genre)
	putText(buf, field(decoder.SongLayout, "artist"), song.Artist)

	levels := field(decoder.SongLayout, "levels")
	for i, lv := range song.Level {
		buf[levels.Offset+i] = byte(lv)
	}
	PutInt32(buf, field(decoder.SongLayout, "bpm_max").Offset, bpmMax)
	PutInt32(buf, field(decoder.SongLayout, "bpm_min").Offset, bpmMin)

	notes := field(decoder.SongLayout, "total_notes")
	for i, n := range song.TotalNotes {
		PutInt32(buf, notes.Offset+i*4, int32(n))
	}

	id, _ := strconv.Atoi(song.ID)
	PutInt32(buf, field(decoder.SongLayout, "id").Offset, int32(id))
	return buf
}

// UnlockRecords は解禁データをメモリ上と同じ形式で連結します
func UnlockRecords(records ...models.UnlockData) []byte {
	buf := make([]byte, 0, len(records)*decoder.UnlockRecordSize)
	for _, r := range records {
		rec := make([]byte, decoder.UnlockRecordSize)
		PutInt32(rec, field(decoder.UnlockLayout, "song_id").Offset, r.SongID)
		PutInt32(rec, field(decoder.UnlockLayout, "type").Offset, int32(r.Type))
		PutInt32(rec, field(decoder.UnlockLayout, "unlocks").Offset, r.Unlocks)
		buf = append(buf, rec...)
	}
	return buf
}

// ChartPointer は現在の譜面を指すレコードを作成します
func ChartPointer(songID int32, d models.Difficulty) []byte {
	buf := make([]byte, decoder.ChartPointerSize)
	PutInt32(buf, 0, songID)
	PutInt32(buf, 4, int32(d))
	return buf
}

// Int32 は32ビット整数1つ分のバイト列を作成します
func Int32(v int32) []byte {
	buf := make([]byte, 4)
	PutInt32(buf, 0, v)
	return buf
}

// PutInt32 は buf の offset にリトルエンディアンで v を書き込みます
func PutInt32(buf []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
}

// ShiftJIS は文字列をShift-JISに変換します
func ShiftJIS(s string) []byte {
	out, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return out
}

func putText(buf []byte, f decoder.Field, s string) {
	copy(buf[f.Offset:f.End()], ShiftJIS(s))
}

func field(l decoder.Layout, name string) decoder.Field {
	f, ok := l.Field(name)
	if !ok {
		panic("unknown field " + l.Name + "." + name)
	}
	return f
}
