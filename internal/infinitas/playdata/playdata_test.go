package playdata

import (
	"context"
	"errors"
	"testing"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	"github.com/shiroemons/go-infitracker/internal/infinitas/config"
	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/mocks"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

var offsets = &config.Offsets{
	JudgeData:   0x100,
	CurrentSong: 0x200,
	PlayData:    0x300,
}

func setup(t *testing.T, songID int32, d models.Difficulty) (*memory.BufferReader, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New()
	song := &models.SongInfo{ID: "01000", Title: "5.1.1."}
	song.Level[models.SPA], song.TotalNotes[models.SPA] = 5, 507
	cat.Add(song)

	r := memory.NewBufferReader(0, 0x400)
	if err := r.Write(offsets.CurrentSong, mocks.ChartPointer(songID, d)); err != nil {
		t.Fatal(err)
	}

	judge := make([]byte, decoder.JudgeSize)
	for i, v := range []int32{400, 150, 20, 5, 8} {
		mocks.PutInt32(judge, i*4, v)
	}
	mocks.PutInt32(judge, 40, 9)
	mocks.PutInt32(judge, 48, 60)
	mocks.PutInt32(judge, 56, 45)
	if err := r.Write(offsets.JudgeData, judge); err != nil {
		t.Fatal(err)
	}

	play := make([]byte, decoder.PlayDataSize)
	mocks.PutInt32(play, 24, int32(models.LampClear))
	if err := r.Write(offsets.PlayData, play); err != nil {
		t.Fatal(err)
	}
	return r, cat
}

func TestFetch(t *testing.T) {
	r, cat := setup(t, 1000, models.SPA)

	got, err := Fetch(context.Background(), r, offsets, cat)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got.Chart != (models.Chart{SongID: "01000", Difficulty: models.SPA}) {
		t.Errorf("Chart = %v", got.Chart)
	}
	if got.Title != "5.1.1." || got.Level != 5 {
		t.Errorf("Title/Level = %q/%d", got.Title, got.Level)
	}
	// 400*2 + 150 = 950、理論値1014 → 950*9 = 8550 > 8*1014 = 8112
	if got.ExScore != 950 || got.Grade != models.GradeAAA {
		t.Errorf("ExScore/Grade = %d/%s", got.ExScore, got.Grade)
	}
	if got.MissCount != 13 || got.Lamp != models.LampClear {
		t.Errorf("MissCount/Lamp = %d/%s", got.MissCount, got.Lamp)
	}
	if got.Judge.ComboBreak[0] != 9 || got.Judge.Fast[0] != 60 || got.Judge.Slow[0] != 45 {
		t.Errorf("Judge = %+v", got.Judge)
	}
}

func TestFetch_UnknownSong(t *testing.T) {
	r, cat := setup(t, 1234, models.SPA)
	if _, err := Fetch(context.Background(), r, offsets, cat); !errors.Is(err, apperrors.ErrUnknownSong) {
		t.Errorf("Fetch() error = %v; want ErrUnknownSong", err)
	}
}

func TestFetch_ReadError(t *testing.T) {
	r, cat := setup(t, 1000, models.SPA)
	r.Error = memory.ErrProcessGone
	if _, err := Fetch(context.Background(), r, offsets, cat); !errors.Is(err, memory.ErrProcessGone) {
		t.Errorf("Fetch() error = %v; want ErrProcessGone", err)
	}
}

func TestFetch_WithoutPlayData(t *testing.T) {
	r, cat := setup(t, 1000, models.SPA)
	noLamp := *offsets
	noLamp.PlayData = 0

	got, err := Fetch(context.Background(), r, &noLamp, cat)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Lamp != models.LampNP {
		t.Errorf("Lamp = %s; want NP", got.Lamp)
	}
}
