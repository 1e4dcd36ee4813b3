package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// HTTPSink はフォーム形式のPOSTでサーバーへ送信します
type HTTPSink struct {
	server string
	apiKey string
	client *http.Client
}

// NewHTTPSink は新しいHTTPSinkを作成します
func NewHTTPSink(server, apiKey string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		server: strings.TrimRight(server, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// ReportUnlock は /api/unlocksong へ解禁状態を送ります
func (s *HTTPSink) ReportUnlock(ctx context.Context, change models.UnlockChange) error {
	form := url.Values{}
	form.Set("songid", change.SongID)
	form.Set("state", strconv.Itoa(int(change.Unlocks)))
	return s.post(ctx, "/api/unlocksong", form)
}

// ReportUnlockType は /api/updatesong へ解禁種別を送ります
func (s *HTTPSink) ReportUnlockType(ctx context.Context, change models.UnlockTypeChange) error {
	form := url.Values{}
	form.Set("songid", change.SongID)
	form.Set("unlockType", change.Type.String())
	return s.post(ctx, "/api/updatesong", form)
}

// ReportSong は /api/addsong へ楽曲を登録し、難易度表記のある譜面を /api/addchart へ1件ずつ登録します。
// ビギナー譜面は登録しません
func (s *HTTPSink) ReportSong(ctx context.Context, added models.SongAdded) error {
	song := added.Song
	form := url.Values{}
	form.Set("songid", song.ID)
	form.Set("unlockType", song.Type.String())
	form.Set("title", song.Title)
	form.Set("title2", song.TitleEnglish)
	form.Set("artist", song.Artist)
	form.Set("genre", song.Genre)
	form.Set("bpm", song.BPM)
	if err := s.post(ctx, "/api/addsong", form); err != nil {
		return err
	}

	for i := range models.ChartCount {
		d := models.Difficulty(i)
		if d == models.SPB || d == models.DPB || !song.Trackable(d) {
			continue
		}
		form := url.Values{}
		form.Set("songid", song.ID)
		form.Set("unlocked", strconv.FormatBool(uint32(added.Unlocks)>>uint(d)&1 != 0))
		form.Set("diff", d.String())
		form.Set("level", strconv.Itoa(song.Level[d]))
		form.Set("notecount", strconv.Itoa(song.TotalNotes[d]))
		if err := s.post(ctx, "/api/addchart", form); err != nil {
			return err
		}
	}
	return nil
}

// ReportPlay は /api/songplayed へプレー結果を送ります
func (s *HTTPSink) ReportPlay(ctx context.Context, result models.PlayResult) error {
	j := result.Judge
	form := url.Values{}
	form.Set("songid", result.Chart.SongID)
	form.Set("diff", result.Chart.Difficulty.String())
	form.Set("exscore", strconv.Itoa(result.ExScore))
	form.Set("lamp", result.Lamp.String())
	form.Set("grade", result.Grade.String())
	form.Set("misscount", strconv.Itoa(result.MissCount))
	form.Set("pgreat", strconv.Itoa(j.PGreat[0]+j.PGreat[1]))
	form.Set("great", strconv.Itoa(j.Great[0]+j.Great[1]))
	form.Set("good", strconv.Itoa(j.Good[0]+j.Good[1]))
	form.Set("bad", strconv.Itoa(j.Bad[0]+j.Bad[1]))
	form.Set("poor", strconv.Itoa(j.Poor[0]+j.Poor[1]))
	form.Set("combobreak", strconv.Itoa(j.ComboBreak[0]+j.ComboBreak[1]))
	form.Set("fast", strconv.Itoa(j.Fast[0]+j.Fast[1]))
	form.Set("slow", strconv.Itoa(j.Slow[0]+j.Slow[1]))
	return s.post(ctx, "/api/songplayed", form)
}

func (s *HTTPSink) post(ctx context.Context, path string, form url.Values) error {
	form.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.server+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %d %s", ErrStatus, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
