// Package unlock は楽曲ごとの解禁状態を追跡します
package unlock

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

// DefaultPassLimit は追加読み出しの回数の上限
const DefaultPassLimit = 32

// Options はTrackerの設定
type Options struct {
	PassLimit int
	Logger    interfaces.Logger
}

// Tracker は解禁データを読み込み、前回との差分を検出します
type Tracker struct {
	reader    memory.Reader
	base      uint64
	catalog   *catalog.Catalog
	passLimit int
	logger    interfaces.Logger

	// prior は前回読み込んだ解禁データ
	prior map[string]models.UnlockData
	// passes は直前の Refresh での追加読み出し回数
	passes int
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NewTracker は新しいTrackerを作成します
func NewTracker(reader memory.Reader, base uint64, cat *catalog.Catalog, opts Options) *Tracker {
	t := &Tracker{
		reader:    reader,
		base:      base,
		catalog:   cat,
		passLimit: opts.PassLimit,
		logger:    opts.Logger,
		prior:     make(map[string]models.UnlockData),
	}
	if t.passLimit <= 0 {
		t.passLimit = DefaultPassLimit
	}
	if t.logger == nil {
		t.logger = nopLogger{}
	}
	return t
}

// Refresh はメモリから全楽曲の解禁データを読み込みます。
//
// 解禁データには楽曲リストにない楽曲 (未公開曲など) が混ざっているため、
// 楽曲数ぶん読んだだけでは末尾の楽曲が欠けます。欠けた件数だけ続きを読み、
// その中にも楽曲リストにないものがあればさらに続きを読みます。
// 読み出しに失敗した場合は前回の状態を変更せずにエラーを返します
func (t *Tracker) Refresh(ctx context.Context) (map[string]models.UnlockData, error) {
	fresh := make(map[string]models.UnlockData)
	t.passes = 0
	count := t.catalog.Len()
	if count == 0 {
		return fresh, nil
	}

	next := t.base
	overflow, err := t.readBatch(ctx, &next, count, fresh)
	if err != nil {
		return nil, err
	}

	for pass := 1; overflow > 0; pass++ {
		if pass > t.passLimit {
			t.logger.Printf("解禁データの追加読み出しが%d回を超えたため打ち切りました (残り%d件)\n", t.passLimit, overflow)
			break
		}
		overflow, err = t.readBatch(ctx, &next, overflow, fresh)
		if err != nil {
			return nil, err
		}
		t.passes = pass
	}

	return fresh, nil
}

// readBatch は next から records 件を読み込み、楽曲リストにない件数を返します。
// next は読み込んだ範囲の直後に進みます
func (t *Tracker) readBatch(ctx context.Context, next *uint64, records int, fresh map[string]models.UnlockData) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	address := *next
	length := uint32(records * decoder.UnlockRecordSize)
	buf, err := t.reader.Read(address, length)
	if err != nil {
		return 0, apperrors.NewReadError("解禁データの読み出し", address, length, err)
	}
	*next = address + uint64(length)

	overflow := 0
	for offset := 0; offset+decoder.UnlockRecordSize <= len(buf); offset += decoder.UnlockRecordSize {
		data := decoder.DecodeUnlockRecord(buf[offset : offset+decoder.UnlockRecordSize])
		if data.SongID == 0 {
			break
		}

		id := data.ID()
		song, ok := t.catalog.Get(id)
		if !ok {
			overflow++
			t.logger.Printf("楽曲リストにない楽曲の解禁データです: %s\n", id)
			continue
		}
		song.Type = data.Type
		fresh[id] = data
	}
	return overflow, nil
}

// Diff は前回の状態と比較し、解禁状態が変化した楽曲を返します。
// 比較後は fresh が前回の状態になります
func (t *Tracker) Diff(fresh map[string]models.UnlockData) []models.UnlockChange {
	var changes []models.UnlockChange
	for _, id := range slices.Sorted(maps.Keys(fresh)) {
		data := fresh[id]
		old, ok := t.prior[id]
		if !ok {
			t.logger.Printf("解禁データを初めて取得しました: %s (%s, 0b%b)\n", id, data.Type, uint32(data.Unlocks))
			continue
		}
		if old.Unlocks != data.Unlocks {
			changes = append(changes, models.UnlockChange{SongID: id, Unlocks: data.Unlocks})
		}
	}
	t.prior = fresh
	return changes
}

// Update は解禁データを読み込み、前回から変化した楽曲を返します
func (t *Tracker) Update(ctx context.Context) ([]models.UnlockChange, error) {
	fresh, err := t.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return t.Diff(fresh), nil
}

// IsChartUnlocked は解禁ビットから譜面が解禁済みかを判定します
func IsChartUnlocked(unlocks int32, d models.Difficulty) bool {
	return (uint32(unlocks)>>uint(d))&1 != 0
}

// Get は楽曲の解禁データを返します
func (t *Tracker) Get(id string) (models.UnlockData, bool) {
	data, ok := t.prior[id]
	return data, ok
}

// Unlocked は譜面が解禁済みかを返します。解禁データがない楽曲は未解禁として扱います
func (t *Tracker) Unlocked(chart models.Chart) bool {
	data, ok := t.prior[chart.SongID]
	return ok && IsChartUnlocked(data.Unlocks, chart.Difficulty)
}

// OverflowPasses は直前の Refresh で行った追加読み出しの回数を返します
func (t *Tracker) OverflowPasses() int {
	return t.passes
}

// Len は保持している解禁データの件数を返します
func (t *Tracker) Len() int {
	return len(t.prior)
}

// Dump は解禁データを "id,種別,解禁ビット" の形式でID順に書き出します
func (t *Tracker) Dump() []byte {
	var sb strings.Builder
	for _, id := range slices.Sorted(maps.Keys(t.prior)) {
		data := t.prior[id]
		fmt.Fprintf(&sb, "%s,%d,%d\n", id, int(data.Type), data.Unlocks)
	}
	return []byte(sb.String())
}

// Save は解禁データをファイルに保存します
func (t *Tracker) Save(fs interfaces.FileSystem, path string) error {
	if err := fs.WriteFile(path, t.Dump(), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}
