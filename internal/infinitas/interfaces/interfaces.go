// Package interfaces はトラッカーで使用するインターフェースを定義します
package interfaces

import (
	"context"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	ReadFile(filename string) ([]byte, error)
	WriteFile(filename string, data []byte, perm uint32) error
	AppendFile(filename string, data []byte, perm uint32) error
	MkdirAll(path string, perm uint32) error
}

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}

// Sink は解禁状態の変化、楽曲の登録、プレー結果を受け取る送信先のインターフェース
type Sink interface {
	ReportUnlock(ctx context.Context, change models.UnlockChange) error
	ReportUnlockType(ctx context.Context, change models.UnlockTypeChange) error
	ReportSong(ctx context.Context, song models.SongAdded) error
	ReportPlay(ctx context.Context, result models.PlayResult) error
}

// ScoreSource は譜面ごとの自己ベストを提供するインターフェース
type ScoreSource interface {
	BestScore(chart models.Chart) (models.TrackerInfo, bool)
}
