package unlock

import (
	"bufio"
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// LoadDump は Save で書き出した解禁データを読み込みます。
// ファイルがなければ空のまま返し、解析できない行は読み飛ばして件数を返します
func LoadDump(fs interfaces.FileSystem, path string, logger interfaces.Logger) (map[string]models.UnlockData, int, error) {
	saved := make(map[string]models.UnlockData)
	if !fs.FileExists(path) {
		return saved, 0, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return saved, 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	skipped := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		entry, err := parseDumpRow(text)
		if err != nil {
			skipped++
			if logger != nil {
				logger.Printf("%v\n", apperrors.NewParseError(path, line, err))
			}
			continue
		}
		saved[entry.ID()] = entry
	}
	if err := scanner.Err(); err != nil {
		return saved, skipped, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return saved, skipped, nil
}

// parseDumpRow は "id,種別,解禁ビット" の1行を解析します
func parseDumpRow(line string) (models.UnlockData, error) {
	cols := strings.Split(line, ",")
	if len(cols) != 3 {
		return models.UnlockData{}, fmt.Errorf("%w: %d", ErrColumnCount, len(cols))
	}
	id, err := strconv.ParseInt(cols[0], 10, 32)
	if err != nil {
		return models.UnlockData{}, err
	}
	typ, err := strconv.Atoi(cols[1])
	if err != nil {
		return models.UnlockData{}, err
	}
	unlocks, err := strconv.ParseInt(cols[2], 10, 32)
	if err != nil {
		return models.UnlockData{}, err
	}
	return models.UnlockData{SongID: int32(id), Type: models.UnlockType(typ), Unlocks: int32(unlocks)}, nil
}

// SyncPlan は前回保存した解禁データとの差分
type SyncPlan struct {
	// Added は前回の保存時にはなかった楽曲
	Added       []models.SongAdded
	TypeChanges []models.UnlockTypeChange
	Changes     []models.UnlockChange
}

// Empty は差分がないかどうかを返します
func (p SyncPlan) Empty() bool {
	return len(p.Added) == 0 && len(p.TypeChanges) == 0 && len(p.Changes) == 0
}

// Compare は現在の解禁データを前回保存した解禁データと比べます。
// 新しい楽曲は登録だけを行い、解禁状態の変化としては扱いません
func (t *Tracker) Compare(saved map[string]models.UnlockData) SyncPlan {
	var plan SyncPlan
	for _, id := range slices.Sorted(maps.Keys(t.prior)) {
		current := t.prior[id]
		old, ok := saved[id]
		if !ok {
			song, found := t.catalog.Get(id)
			if !found {
				continue
			}
			plan.Added = append(plan.Added, models.SongAdded{Song: *song, Unlocks: current.Unlocks})
			continue
		}
		if old.Type != current.Type {
			plan.TypeChanges = append(plan.TypeChanges, models.UnlockTypeChange{SongID: id, Type: current.Type})
		}
		if old.Unlocks != current.Unlocks {
			plan.Changes = append(plan.Changes, models.UnlockChange{SongID: id, Unlocks: current.Unlocks})
		}
	}
	return plan
}
