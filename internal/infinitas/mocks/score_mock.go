package mocks

import "github.com/shiroemons/go-infitracker/internal/infinitas/models"

// MockScoreSource はテスト用の自己ベスト提供元
type MockScoreSource struct {
	Scores map[models.Chart]models.TrackerInfo
	Calls  int
}

// NewMockScoreSource は新しいMockScoreSourceを作成します
func NewMockScoreSource() *MockScoreSource {
	return &MockScoreSource{Scores: make(map[models.Chart]models.TrackerInfo)}
}

// BestScore は登録された自己ベストを返します
func (m *MockScoreSource) BestScore(chart models.Chart) (models.TrackerInfo, bool) {
	m.Calls++
	info, ok := m.Scores[chart]
	return info, ok
}
