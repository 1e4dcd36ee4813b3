// Package score はEXスコアからDJ LEVELを求めます
package score

import "github.com/shiroemons/go-infitracker/internal/infinitas/models"

// thresholds は上位から順のDJ LEVELと、理論値の何/9を超えれば到達するか
var thresholds = []struct {
	grade models.Grade
	ninth int
}{
	{models.GradeAAA, 8},
	{models.GradeAA, 7},
	{models.GradeA, 6},
	{models.GradeB, 5},
	{models.GradeC, 4},
	{models.GradeD, 3},
	{models.GradeE, 2},
}

// MaxExScore は譜面の理論値 (ノーツ数 × 2) を返します
func MaxExScore(song *models.SongInfo, d models.Difficulty) int {
	if song == nil || !d.Valid() {
		return 0
	}
	return song.TotalNotes[d] * 2
}

// Grade はEXスコアからDJ LEVELを求めます。
// 理論値の k/9 を超えているかを整数で比較するため、境界で誤差が出ません。
// 未プレーの判定はすべての閾値を下回った後に行います
func Grade(song *models.SongInfo, d models.Difficulty, exScore int) models.Grade {
	maxEx := MaxExScore(song, d)
	for _, th := range thresholds {
		if 9*exScore > th.ninth*maxEx {
			return th.grade
		}
	}
	if exScore == 0 {
		return models.GradeNP
	}
	return models.GradeF
}
