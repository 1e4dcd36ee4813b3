package decoder

import (
	"fmt"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

const (
	slab = 64
	word = 4

	// SongStride は楽曲リスト内のレコード間隔 (0x3F0)
	SongStride = 1008
	// UnlockRecordSize は解禁データ1件の大きさ
	UnlockRecordSize = 12
	// ChartPointerSize は現在の譜面を指すレコードの大きさ
	ChartPointerSize = 8
	// JudgeSize は判定データブロックの大きさ
	JudgeSize = 16 * word
	// PlayDataSize はプレーデータブロックの大きさ
	PlayDataSize = 8 * word
	// StateMarkerOffset は判定データ先頭からプレー中マーカーまでの距離
	StateMarkerOffset = 24 * word
	// SettingsMarkerOffset はプレー設定から選曲画面マーカーまでの距離 (負方向)
	SettingsMarkerOffset = 5 * word
)

// 楽曲レコード
var (
	songTitle        = Field{Name: "title", Offset: 0, Width: slab, Kind: KindText}
	songTitleEnglish = Field{Name: "title_english", Offset: slab, Width: slab, Kind: KindText}
	songGenre        = Field{Name: "genre", Offset: slab * 2, Width: slab, Kind: KindText}
	songArtist       = Field{Name: "artist", Offset: slab * 3, Width: slab, Kind: KindText}
	songLevels       = Field{Name: "levels", Offset: slab*4 + slab/2, Width: models.ChartCount, Kind: KindBytes}
	songBPMMax       = Field{Name: "bpm_max", Offset: slab * 5, Width: word, Kind: KindInt32}
	songBPMMin       = Field{Name: "bpm_min", Offset: slab*5 + word, Width: word, Kind: KindInt32}
	songNotes        = Field{Name: "total_notes", Offset: slab*6 + 48, Width: slab, Kind: KindInt32Array}
	songID           = Field{Name: "id", Offset: 256 + 368, Width: word, Kind: KindInt32}

	// SongLayout は楽曲リスト1件のレイアウト
	SongLayout = Layout{
		Name: "song",
		Size: SongStride,
		Fields: []Field{
			songTitle, songTitleEnglish, songGenre, songArtist,
			songLevels, songBPMMax, songBPMMin, songNotes, songID,
		},
	}
)

// 解禁データ
var (
	unlockSongID = Field{Name: "song_id", Offset: 0, Width: word, Kind: KindInt32}
	unlockType   = Field{Name: "type", Offset: word, Width: word, Kind: KindInt32}
	unlockBits   = Field{Name: "unlocks", Offset: word * 2, Width: word, Kind: KindInt32}

	// UnlockLayout は解禁データ1件のレイアウト
	UnlockLayout = Layout{
		Name:   "unlock",
		Size:   UnlockRecordSize,
		Fields: []Field{unlockSongID, unlockType, unlockBits},
	}
)

// 現在の譜面
var (
	pointerSongID     = Field{Name: "song_id", Offset: 0, Width: word, Kind: KindInt32}
	pointerDifficulty = Field{Name: "difficulty", Offset: word, Width: word, Kind: KindInt32}

	// ChartPointerLayout は現在の譜面を指すレコードのレイアウト
	ChartPointerLayout = Layout{
		Name:   "chart_pointer",
		Size:   ChartPointerSize,
		Fields: []Field{pointerSongID, pointerDifficulty},
	}
)

// 判定データ (1P/2P の順に並ぶ)
var (
	judgeP1    = Field{Name: "p1_judge", Offset: 0, Width: word * 5, Kind: KindInt32Array}
	judgeP2    = Field{Name: "p2_judge", Offset: word * 5, Width: word * 5, Kind: KindInt32Array}
	judgeCombo = Field{Name: "combo_break", Offset: word * 10, Width: word * 2, Kind: KindInt32Array}
	judgeFast  = Field{Name: "fast", Offset: word * 12, Width: word * 2, Kind: KindInt32Array}
	judgeSlow  = Field{Name: "slow", Offset: word * 14, Width: word * 2, Kind: KindInt32Array}

	// JudgeLayout は判定データブロックのレイアウト
	JudgeLayout = Layout{
		Name:   "judge",
		Size:   JudgeSize,
		Fields: []Field{judgeP1, judgeP2, judgeCombo, judgeFast, judgeSlow},
	}
)

// プレーデータ
var (
	playLamp = Field{Name: "lamp", Offset: word * 6, Width: word, Kind: KindInt32}

	// PlayDataLayout はプレーデータブロックのレイアウト
	PlayDataLayout = Layout{
		Name:   "play_data",
		Size:   PlayDataSize,
		Fields: []Field{playLamp},
	}
)

// DecodeCatalogEntry は楽曲リストの1件を解析します。
// タイトル領域の先頭4バイトがゼロ (空きスロット = リスト終端) の場合は false を返します。
func DecodeCatalogEntry(buf []byte) (*models.SongInfo, bool) {
	w := Window(buf)
	if w.Zero(songTitle, word) {
		return nil, false
	}

	song := &models.SongInfo{
		ID:           models.FormatSongID(w.Int32(songID)),
		Title:        w.Text(songTitle),
		TitleEnglish: w.Text(songTitleEnglish),
		Genre:        w.Text(songGenre),
		Artist:       w.Text(songArtist),
		BPM:          FormatBPM(w.Int32(songBPMMin), w.Int32(songBPMMax)),
	}
	for i, lv := range w.Bytes(songLevels) {
		song.Level[i] = int(lv)
	}
	for i, n := range w.Int32s(songNotes, models.ChartCount) {
		song.TotalNotes[i] = int(n)
	}
	return song, true
}

// FormatBPM はBPM表記を作成します (最小値が0ならソフラン無し)
func FormatBPM(minBPM, maxBPM int32) string {
	if minBPM == 0 {
		return fmt.Sprintf("%03d", maxBPM)
	}
	return fmt.Sprintf("%03d~%03d", minBPM, maxBPM)
}

// DecodeUnlockRecord は解禁データ1件を解析します。SongID が0ならバッチの終端です。
func DecodeUnlockRecord(buf []byte) models.UnlockData {
	w := Window(buf)
	return models.UnlockData{
		SongID:  w.Int32(unlockSongID),
		Type:    models.UnlockType(w.Int32(unlockType)),
		Unlocks: w.Int32(unlockBits),
	}
}

// DecodeChartPointer は現在選択中の譜面を解析します
func DecodeChartPointer(buf []byte) models.Chart {
	w := Window(buf)
	return models.Chart{
		SongID:     models.FormatSongID(w.Int32(pointerSongID)),
		Difficulty: models.Difficulty(w.Int32(pointerDifficulty)),
	}
}

// DecodeJudge は判定データブロックを解析します
func DecodeJudge(buf []byte) models.Judge {
	w := Window(buf)
	var j models.Judge
	for side, f := range []Field{judgeP1, judgeP2} {
		v := w.Int32s(f, 5)
		j.PGreat[side] = int(v[0])
		j.Great[side] = int(v[1])
		j.Good[side] = int(v[2])
		j.Bad[side] = int(v[3])
		j.Poor[side] = int(v[4])
	}
	for side, v := range w.Int32s(judgeCombo, 2) {
		j.ComboBreak[side] = int(v)
	}
	for side, v := range w.Int32s(judgeFast, 2) {
		j.Fast[side] = int(v)
	}
	for side, v := range w.Int32s(judgeSlow, 2) {
		j.Slow[side] = int(v)
	}
	return j
}

// DecodeLamp はプレーデータブロックからクリアランプを読みます。
// 範囲外の値は NP として扱います。
func DecodeLamp(buf []byte) models.Lamp {
	l := models.Lamp(Window(buf).Int32(playLamp))
	if !l.Valid() {
		return models.LampNP
	}
	return l
}

// DecodeStateMarker は状態マーカー (32ビット整数1つ) を読みます
func DecodeStateMarker(buf []byte) int32 {
	return Int32At(buf, 0)
}
