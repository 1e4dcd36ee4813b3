package tracker

import (
	"fmt"
	"io"
	"strings"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// bitCost は1レベルあたりのビット解禁コスト
const bitCost = 500

// UnlockLookup は譜面ごとの解禁状態を返します
type UnlockLookup interface {
	Unlocked(chart models.Chart) bool
}

// Header はトラッカー表の見出し行を返します
func Header() string {
	cols := []string{"title", "Type", "Label", "Cost Normal", "Cost Hyper", "Cost Another"}
	for _, d := range models.CoreDifficulties {
		cols = append(cols,
			d.String(),
			d.String()+" Rating",
			d.String()+" Lamp",
			d.String()+" Letter",
			d.String()+" EX Score",
			d.String()+" Miss Count",
		)
	}
	return strings.Join(cols, "\t")
}

// Export はトラッカー表 (タブ区切り) を書き出します。
// 1曲1行で、記録のない譜面は空欄になります。customTypes に登録された楽曲はラベルを置き換え、ビットのコストを0にします
func (s *Store) Export(w io.Writer, cat *catalog.Catalog, unlocks UnlockLookup, customTypes map[string]string) error {
	if _, err := fmt.Fprintln(w, Header()); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	tracked := make(map[string]bool)
	for chart := range s.entries {
		tracked[chart.SongID] = true
	}

	for _, id := range cat.IDs() {
		if !tracked[id] {
			continue
		}
		song, _ := cat.Get(id)
		if _, err := fmt.Fprintln(w, s.row(song, unlocks, customTypes)); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}
	return nil
}

// row は1曲分の行を作ります。各セルの後ろにタブが付きます
func (s *Store) row(song *models.SongInfo, unlocks UnlockLookup, customTypes map[string]string) string {
	label, custom := customTypes[song.ID]
	if !custom {
		label = song.Type.String()
	}

	var costs, charts strings.Builder
	for _, d := range models.CoreDifficulties {
		chart := models.Chart{SongID: song.ID, Difficulty: d}
		info, ok := s.entries[chart]
		if !ok {
			if !d.IsDouble() {
				costs.WriteString("\t")
			}
			charts.WriteString("\t\t\t\t")
			continue
		}

		if !d.IsDouble() {
			cost := 0
			if song.Type == models.UnlockBits && !custom {
				cost = bitCost * (song.Level[d] + song.Level[d+models.DPB])
			}
			fmt.Fprintf(&costs, "%d\t", cost)
		}

		unlocked := "FALSE"
		if unlocks != nil && unlocks.Unlocked(chart) {
			unlocked = "TRUE"
		}
		fmt.Fprintf(&charts, "%s\t%d\t%s\t%s\t%d\t%d\t", unlocked, song.Level[d], info.Lamp, info.Grade, info.ExScore, info.MissCount)
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s%s", song.Title, song.Type, label, costs.String(), charts.String())
}
