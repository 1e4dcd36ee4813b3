package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// MockSink はテスト用の送信先
type MockSink struct {
	mu          sync.Mutex
	Unlocks     []models.UnlockChange
	UnlockTypes []models.UnlockTypeChange
	Songs       []models.SongAdded
	Plays       []models.PlayResult
	Error       error
}

// ReportUnlock は解禁状態の変化を記録します
func (m *MockSink) ReportUnlock(ctx context.Context, change models.UnlockChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Unlocks = append(m.Unlocks, change)
	return nil
}

// ReportUnlockType は解禁種別の変化を記録します
func (m *MockSink) ReportUnlockType(ctx context.Context, change models.UnlockTypeChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.UnlockTypes = append(m.UnlockTypes, change)
	return nil
}

// ReportSong は新しい楽曲を記録します
func (m *MockSink) ReportSong(ctx context.Context, added models.SongAdded) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Songs = append(m.Songs, added)
	return nil
}

// ReportPlay はプレー結果を記録します
func (m *MockSink) ReportPlay(ctx context.Context, result models.PlayResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Plays = append(m.Plays, result)
	return nil
}

// SongIDs は登録された楽曲のIDを返します
func (m *MockSink) SongIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.Songs))
	for _, s := range m.Songs {
		ids = append(ids, s.Song.ID)
	}
	return ids
}

// Counts は記録した件数を返します
func (m *MockSink) Counts() (unlocks, plays int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Unlocks), len(m.Plays)
}

// MockLogger はテスト用のロガー
type MockLogger struct {
	mu    sync.Mutex
	Lines []string
}

// Printf は出力内容を記録します
func (l *MockLogger) Printf(format string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, fmt.Sprintf(format, a...))
}

// Contains は substr を含む行があるかを返します
func (l *MockLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.Lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
