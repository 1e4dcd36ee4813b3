// Package tracker は譜面ごとの自己ベストを保持し、ファイルへの保存と表の書き出しを行います
package tracker

import (
	"bufio"
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/internal/infinitas/score"
)

// Store は譜面をキーとした自己ベスト
type Store struct {
	entries map[models.Chart]models.TrackerInfo
	logger  interfaces.Logger
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NewStore は空のStoreを作成します
func NewStore(logger interfaces.Logger) *Store {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Store{
		entries: make(map[models.Chart]models.TrackerInfo),
		logger:  logger,
	}
}

// Get は譜面の自己ベストを返します
func (s *Store) Get(chart models.Chart) (models.TrackerInfo, bool) {
	info, ok := s.entries[chart]
	return info, ok
}

// Set は譜面の自己ベストを置き換えます
func (s *Store) Set(chart models.Chart, info models.TrackerInfo) {
	s.entries[chart] = info
}

// Len は保持している譜面数を返します
func (s *Store) Len() int {
	return len(s.entries)
}

// Charts は保持している譜面を楽曲ID、難易度の順に並べて返します
func (s *Store) Charts() []models.Chart {
	return slices.SortedFunc(maps.Keys(s.entries), func(a, b models.Chart) int {
		return cmp.Or(strings.Compare(a.SongID, b.SongID), cmp.Compare(a.Difficulty, b.Difficulty))
	})
}

// Load はトラッカーファイルを読み込みます。
// ファイルがなければ何もしません。解析できない行は読み飛ばし、その件数を返します
func (s *Store) Load(fs interfaces.FileSystem, path string) (int, error) {
	if !fs.FileExists(path) {
		return 0, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	skipped := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		chart, info, err := parseRow(text)
		if err != nil {
			skipped++
			s.logger.Printf("%v\n", apperrors.NewParseError(path, line, err))
			continue
		}
		s.entries[chart] = info
	}
	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return skipped, nil
}

// parseRow は "songId,difficulty,grade,lamp,exScore,missCount" の1行を解析します
func parseRow(line string) (models.Chart, models.TrackerInfo, error) {
	var chart models.Chart
	var info models.TrackerInfo

	cols := strings.Split(line, ",")
	if len(cols) != 6 {
		return chart, info, fmt.Errorf("%w: %d", ErrColumnCount, len(cols))
	}

	d, err := models.ParseDifficulty(cols[1])
	if err != nil {
		return chart, info, err
	}
	grade, err := models.ParseGrade(cols[2])
	if err != nil {
		return chart, info, err
	}
	lamp, err := models.ParseLamp(cols[3])
	if err != nil {
		return chart, info, err
	}
	ex, err := strconv.Atoi(cols[4])
	if err != nil {
		return chart, info, err
	}
	miss, err := strconv.Atoi(cols[5])
	if err != nil {
		return chart, info, err
	}

	chart = models.Chart{SongID: cols[0], Difficulty: d}
	info = models.TrackerInfo{Grade: grade, Lamp: lamp, ExScore: ex, MissCount: miss}
	return chart, info, nil
}

// Merge は楽曲リストにあってまだ保持していない譜面を追加し、追加した件数を返します。
// 値は source の自己ベストから作ります。source に記録がなければ未プレーとして追加します
func (s *Store) Merge(cat *catalog.Catalog, source interfaces.ScoreSource) int {
	added := 0
	for _, song := range cat.Songs() {
		for d := models.SPB; d <= models.DPL; d++ {
			if !song.Trackable(d) {
				continue
			}
			chart := models.Chart{SongID: song.ID, Difficulty: d}
			if _, exists := s.entries[chart]; exists {
				continue
			}

			var best models.TrackerInfo
			if source != nil {
				best, _ = source.BestScore(chart)
			}
			s.entries[chart] = models.TrackerInfo{
				Grade:     score.Grade(song, d, best.ExScore),
				Lamp:      best.Lamp,
				ExScore:   best.ExScore,
				MissCount: best.MissCount,
			}
			added++
		}
	}
	return added
}

// Record はプレー結果を自己ベストに反映し、更新があったかどうかを返します。
// スコア・クリアランプ・ミスカウントはそれぞれ独立に更新します
func (s *Store) Record(result models.PlayResult) bool {
	old, exists := s.entries[result.Chart]
	best := old
	changed := false

	if !exists || result.ExScore > old.ExScore {
		best.ExScore = result.ExScore
		best.Grade = result.Grade
		changed = true
	}
	if !exists || result.Lamp > old.Lamp {
		best.Lamp = result.Lamp
		changed = true
	}
	// 未プレーの譜面にはミスカウントの記録がない
	if result.Lamp != models.LampNP && (!exists || old.Lamp == models.LampNP || result.MissCount < old.MissCount) {
		best.MissCount = result.MissCount
		changed = true
	}

	if changed {
		s.entries[result.Chart] = best
	}
	return changed
}

// Marshal はトラッカーファイルの内容を作ります
func (s *Store) Marshal() []byte {
	var sb strings.Builder
	for _, chart := range s.Charts() {
		info := s.entries[chart]
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%d,%d\n", chart.SongID, chart.Difficulty, info.Grade, info.Lamp, info.ExScore, info.MissCount)
	}
	return []byte(sb.String())
}

// Save はトラッカーファイルを保存します
func (s *Store) Save(fs interfaces.FileSystem, path string) error {
	if err := fs.WriteFile(path, s.Marshal(), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}
