// Package playdata はプレー終了時の結果をメモリから読み取ります
package playdata

import (
	"context"
	"fmt"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	"github.com/shiroemons/go-infitracker/internal/infinitas/config"
	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/internal/infinitas/score"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

// CurrentChart は選択中 (またはプレー中) の譜面を読み取ります
func CurrentChart(ctx context.Context, reader memory.Reader, address uint64) (models.Chart, error) {
	select {
	case <-ctx.Done():
		return models.Chart{}, ctx.Err()
	default:
	}

	buf, err := reader.Read(address, decoder.ChartPointerSize)
	if err != nil {
		return models.Chart{}, apperrors.NewReadError("現在の譜面の読み出し", address, decoder.ChartPointerSize, err)
	}
	return decoder.DecodeChartPointer(buf), nil
}

// Fetch はリザルト画面に表示されているプレー結果を読み取ります
func Fetch(ctx context.Context, reader memory.Reader, offsets *config.Offsets, cat *catalog.Catalog) (models.PlayResult, error) {
	chart, err := CurrentChart(ctx, reader, offsets.CurrentSong)
	if err != nil {
		return models.PlayResult{}, err
	}
	song, ok := cat.Get(chart.SongID)
	if !ok || !chart.Difficulty.Valid() {
		return models.PlayResult{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownSong, chart)
	}

	buf, err := reader.Read(offsets.JudgeData, decoder.JudgeSize)
	if err != nil {
		return models.PlayResult{}, apperrors.NewReadError("判定データの読み出し", offsets.JudgeData, decoder.JudgeSize, err)
	}
	judge := decoder.DecodeJudge(buf)

	lamp := models.LampNP
	if offsets.PlayData != 0 {
		buf, err := reader.Read(offsets.PlayData, decoder.PlayDataSize)
		if err != nil {
			return models.PlayResult{}, apperrors.NewReadError("プレーデータの読み出し", offsets.PlayData, decoder.PlayDataSize, err)
		}
		lamp = decoder.DecodeLamp(buf)
	}

	ex := judge.ExScore()
	return models.PlayResult{
		Chart:     chart,
		Title:     song.Title,
		Level:     song.Level[chart.Difficulty],
		ExScore:   ex,
		Lamp:      lamp,
		Grade:     score.Grade(song, chart.Difficulty, ex),
		MissCount: judge.MissCount(),
		Judge:     judge,
	}, nil
}
