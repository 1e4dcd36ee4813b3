// Package history はプレー履歴をSQLiteに記録し、譜面ごとの自己ベストを提供します
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

var (
	// ErrOpen はデータベースを開けなかった場合のエラー
	ErrOpen = errors.New("プレー履歴データベースを開けませんでした")

	// ErrRecord はプレー履歴の記録に失敗した場合のエラー
	ErrRecord = errors.New("プレー履歴の記録に失敗しました")
)

// PlayRecord はプレー1回分の記録
type PlayRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"size:36;index"`
	SongID     string `gorm:"size:5;index:idx_chart"`
	Difficulty string `gorm:"size:3;index:idx_chart"`
	Title      string
	Level      int
	ExScore    int
	Grade      int
	Lamp       int
	MissCount  int
	PGreat     int
	Great      int
	Good       int
	Bad        int
	Poor       int
	ComboBreak int
	Fast       int
	Slow       int
	PlayedAt   time.Time `gorm:"index"`
}

// Store はプレー履歴のデータベース
type Store struct {
	db      *gorm.DB
	session uuid.UUID
	now     func() time.Time
}

// Open はデータベースを開き、テーブルを作成します。dsn に ":memory:" を指定するとメモリ上に作成します
func Open(dsn string, session uuid.UUID) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	// SQLite は書き込みが1接続ずつのため接続を1本に絞る
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&PlayRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	return &Store{db: db, session: session, now: time.Now}, nil
}

// Close はデータベースを閉じます
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SessionID はこのStoreで記録するセッションのIDを返します
func (s *Store) SessionID() uuid.UUID {
	return s.session
}

// Record はプレー結果を記録します
func (s *Store) Record(ctx context.Context, result models.PlayResult) error {
	j := result.Judge
	rec := PlayRecord{
		SessionID:  s.session.String(),
		SongID:     result.Chart.SongID,
		Difficulty: result.Chart.Difficulty.String(),
		Title:      result.Title,
		Level:      result.Level,
		ExScore:    result.ExScore,
		Grade:      int(result.Grade),
		Lamp:       int(result.Lamp),
		MissCount:  result.MissCount,
		PGreat:     j.PGreat[0] + j.PGreat[1],
		Great:      j.Great[0] + j.Great[1],
		Good:       j.Good[0] + j.Good[1],
		Bad:        j.Bad[0] + j.Bad[1],
		Poor:       j.Poor[0] + j.Poor[1],
		ComboBreak: j.ComboBreak[0] + j.ComboBreak[1],
		Fast:       j.Fast[0] + j.Fast[1],
		Slow:       j.Slow[0] + j.Slow[1],
		PlayedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrRecord, err)
	}
	return nil
}

// Plays は指定したセッションのプレー履歴を古い順に返します
func (s *Store) Plays(ctx context.Context, session uuid.UUID) ([]PlayRecord, error) {
	var records []PlayRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", session.String()).
		Order("played_at, id").
		Find(&records).Error
	return records, err
}

// BestScore は履歴から譜面の自己ベストを集計します。
// スコア・クリアランプ・ミスカウントはそれぞれ別のプレーの値になることがあります
func (s *Store) BestScore(chart models.Chart) (models.TrackerInfo, bool) {
	var row struct {
		Plays     int64
		ExScore   int
		Grade     int
		Lamp      int
		MissCount *int
	}
	err := s.db.Model(&PlayRecord{}).
		Select("COUNT(*) AS plays, COALESCE(MAX(ex_score), 0) AS ex_score, COALESCE(MAX(grade), 0) AS grade, "+
			"COALESCE(MAX(lamp), 0) AS lamp, MIN(CASE WHEN lamp > 0 THEN miss_count END) AS miss_count").
		Where("song_id = ? AND difficulty = ?", chart.SongID, chart.Difficulty.String()).
		Scan(&row).Error
	if err != nil || row.Plays == 0 {
		return models.TrackerInfo{}, false
	}

	info := models.TrackerInfo{
		Grade:   models.Grade(row.Grade),
		Lamp:    models.Lamp(row.Lamp),
		ExScore: row.ExScore,
	}
	if row.MissCount != nil {
		info.MissCount = *row.MissCount
	}
	return info, true
}
