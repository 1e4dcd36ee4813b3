// Package models はトラッカーで使用するデータモデルを定義します
package models

import "fmt"

// ChartCount は1曲あたりの譜面数
const ChartCount = 10

// Difficulty は譜面の難易度 (序数がビット位置に対応)
type Difficulty int

const (
	SPB Difficulty = iota
	SPN
	SPH
	SPA
	SPL
	DPB
	DPN
	DPH
	DPA
	DPL
)

var difficultyNames = [ChartCount]string{"SPB", "SPN", "SPH", "SPA", "SPL", "DPB", "DPN", "DPH", "DPA", "DPL"}

// CoreDifficulties はレポートに出力する6難易度 (固定順)
var CoreDifficulties = []Difficulty{SPN, SPH, SPA, DPN, DPH, DPA}

func (d Difficulty) String() string {
	if d < 0 || int(d) >= ChartCount {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// Valid は有効な難易度かどうかを返します
func (d Difficulty) Valid() bool {
	return d >= 0 && int(d) < ChartCount
}

// IsDouble はDP譜面かどうかを返します
func (d Difficulty) IsDouble() bool {
	return d >= DPB && d <= DPL
}

// ParseDifficulty は名前から難易度を取得します
func ParseDifficulty(s string) (Difficulty, error) {
	for i, name := range difficultyNames {
		if name == s {
			return Difficulty(i), nil
		}
	}
	return 0, fmt.Errorf("不明な難易度です: %q", s)
}

// Grade はDJ LEVEL (序数が大きいほど良い)
type Grade int

const (
	GradeNP Grade = iota
	GradeF
	GradeE
	GradeD
	GradeC
	GradeB
	GradeA
	GradeAA
	GradeAAA
)

var gradeNames = []string{"NP", "F", "E", "D", "C", "B", "A", "AA", "AAA"}

func (g Grade) String() string {
	if g < 0 || int(g) >= len(gradeNames) {
		return fmt.Sprintf("Grade(%d)", int(g))
	}
	return gradeNames[g]
}

// ParseGrade は名前からグレードを取得します
func ParseGrade(s string) (Grade, error) {
	for i, name := range gradeNames {
		if name == s {
			return Grade(i), nil
		}
	}
	return 0, fmt.Errorf("不明なグレードです: %q", s)
}

// Lamp はクリアランプ (序数が大きいほど良い)
type Lamp int

const (
	LampNP Lamp = iota
	LampFailed
	LampAssistClear
	LampEasyClear
	LampClear
	LampHardClear
	LampExHardClear
	LampFullCombo
	LampPerfectFullCombo
)

var lampNames = []string{"NP", "F", "AC", "EC", "NC", "HC", "EX", "FC", "PFC"}

func (l Lamp) String() string {
	if l < 0 || int(l) >= len(lampNames) {
		return fmt.Sprintf("Lamp(%d)", int(l))
	}
	return lampNames[l]
}

// Valid は有効なランプかどうかを返します
func (l Lamp) Valid() bool {
	return l >= 0 && int(l) < len(lampNames)
}

// ParseLamp は名前からランプを取得します
func ParseLamp(s string) (Lamp, error) {
	for i, name := range lampNames {
		if name == s {
			return Lamp(i), nil
		}
	}
	return 0, fmt.Errorf("不明なランプです: %q", s)
}

// UnlockType は楽曲の解禁種別。
// Bits はロック中も選曲画面に表示されるもの、Sub はロック中は表示されないもの。
type UnlockType int

const (
	UnlockUnknown UnlockType = iota
	UnlockBase
	UnlockBits
	UnlockSub
)

func (u UnlockType) String() string {
	switch u {
	case UnlockUnknown:
		return "Unknown"
	case UnlockBase:
		return "Base"
	case UnlockBits:
		return "Bits"
	case UnlockSub:
		return "Sub"
	default:
		return fmt.Sprintf("UnlockType(%d)", int(u))
	}
}

// SongInfo は楽曲とその譜面のメタデータ
type SongInfo struct {
	ID           string
	Title        string
	TitleEnglish string
	Artist       string
	Genre        string
	BPM          string
	Level        [ChartCount]int
	TotalNotes   [ChartCount]int
	Type         UnlockType
}

// Trackable は譜面に難易度表記があるかどうかを返します
func (s *SongInfo) Trackable(d Difficulty) bool {
	return d.Valid() && s.Level[d] != 0
}

// Chart は楽曲IDと難易度の組
type Chart struct {
	SongID     string
	Difficulty Difficulty
}

func (c Chart) String() string {
	return fmt.Sprintf("%s %s", c.SongID, c.Difficulty)
}

// UnlockData はメモリ上の解禁データ1件
type UnlockData struct {
	SongID  int32
	Type    UnlockType
	Unlocks int32
}

// ID は5桁ゼロ埋めの楽曲IDを返します
func (u UnlockData) ID() string {
	return FormatSongID(u.SongID)
}

// TrackerInfo はトラッカーファイルに保存する譜面ごとの自己ベスト
type TrackerInfo struct {
	Grade     Grade
	Lamp      Lamp
	ExScore   int
	MissCount int
}

// GameState はゲームの推定状態
type GameState int

const (
	StateSongSelect GameState = iota
	StatePlaying
	StateResultScreen
)

func (s GameState) String() string {
	switch s {
	case StateSongSelect:
		return "SongSelect"
	case StatePlaying:
		return "Playing"
	case StateResultScreen:
		return "ResultScreen"
	default:
		return fmt.Sprintf("GameState(%d)", int(s))
	}
}

// Judge は判定内訳 (1P/2P)
type Judge struct {
	PGreat     [2]int
	Great      [2]int
	Good       [2]int
	Bad        [2]int
	Poor       [2]int
	ComboBreak [2]int
	Fast       [2]int
	Slow       [2]int
}

// ExScore はEXスコア (PGREAT×2 + GREAT) を返します
func (j Judge) ExScore() int {
	return (j.PGreat[0]+j.PGreat[1])*2 + j.Great[0] + j.Great[1]
}

// MissCount はミスカウント (BAD + POOR) を返します
func (j Judge) MissCount() int {
	return j.Bad[0] + j.Bad[1] + j.Poor[0] + j.Poor[1]
}

// UnlockChange は解禁状態の変化イベント
type UnlockChange struct {
	SongID  string
	Unlocks int32
}

// SongAdded はサーバーにまだ登録されていない楽曲の登録イベント
type SongAdded struct {
	Song    SongInfo
	Unlocks int32
}

// UnlockTypeChange は楽曲の解禁種別の変化イベント
type UnlockTypeChange struct {
	SongID string
	Type   UnlockType
}

// PlayResult はプレー終了時の結果イベント
type PlayResult struct {
	Chart     Chart
	Title     string
	Level     int
	ExScore   int
	Lamp      Lamp
	Grade     Grade
	MissCount int
	Judge     Judge
}

// FormatSongID は数値IDを5桁ゼロ埋めの文字列にします。
// 5桁に収まらない値 (負の値を含む) は符号なしとして読んだ下5桁を使います
func FormatSongID(id int32) string {
	return fmt.Sprintf("%05d", uint32(id)%100000)
}
