// Package report は解禁状態の変化、楽曲の登録、プレー結果を外部へ送信します
package report

import (
	"context"

	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// 送信するイベントの種類
const (
	KindUnlock     = "unlock"
	KindUnlockType = "unlock_type"
	KindSong       = "song"
	KindPlay       = "play"
)

// LogSink はイベントをログに出力するだけの送信先
type LogSink struct {
	logger interfaces.Logger
}

// NewLogSink は新しいLogSinkを作成します
func NewLogSink(logger interfaces.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// ReportUnlock は解禁状態の変化をログに出力します
func (s *LogSink) ReportUnlock(ctx context.Context, change models.UnlockChange) error {
	s.logger.Printf("解禁状態が変化しました: %s -> 0b%b\n", change.SongID, uint32(change.Unlocks))
	return nil
}

// ReportUnlockType は解禁種別の変化をログに出力します
func (s *LogSink) ReportUnlockType(ctx context.Context, change models.UnlockTypeChange) error {
	s.logger.Printf("解禁種別が変化しました: %s -> %s\n", change.SongID, change.Type)
	return nil
}

// ReportSong は新しい楽曲をログに出力します
func (s *LogSink) ReportSong(ctx context.Context, added models.SongAdded) error {
	s.logger.Printf("新しい楽曲: %s %s (%s)\n", added.Song.ID, added.Song.Title, added.Song.Type)
	return nil
}

// ReportPlay はプレー結果をログに出力します
func (s *LogSink) ReportPlay(ctx context.Context, result models.PlayResult) error {
	s.logger.Printf("プレー結果: %s %s EX %d %s %s MISS %d\n",
		result.Title, result.Chart.Difficulty, result.ExScore, result.Grade, result.Lamp, result.MissCount)
	return nil
}

// MultiSink は複数の送信先へ順に送信します。途中で失敗しても残りの送信先には送ります
type MultiSink []interfaces.Sink

// ReportUnlock は全ての送信先へ解禁状態の変化を送ります
func (m MultiSink) ReportUnlock(ctx context.Context, change models.UnlockChange) error {
	var first error
	for _, s := range m {
		if err := s.ReportUnlock(ctx, change); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReportUnlockType は全ての送信先へ解禁種別の変化を送ります
func (m MultiSink) ReportUnlockType(ctx context.Context, change models.UnlockTypeChange) error {
	var first error
	for _, s := range m {
		if err := s.ReportUnlockType(ctx, change); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReportSong は全ての送信先へ新しい楽曲を送ります
func (m MultiSink) ReportSong(ctx context.Context, added models.SongAdded) error {
	var first error
	for _, s := range m {
		if err := s.ReportSong(ctx, added); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReportPlay は全ての送信先へプレー結果を送ります
func (m MultiSink) ReportPlay(ctx context.Context, result models.PlayResult) error {
	var first error
	for _, s := range m {
		if err := s.ReportPlay(ctx, result); err != nil && first == nil {
			first = err
		}
	}
	return first
}
