package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

var _ interfaces.ScoreSource = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", uuid.New())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func play(id string, d models.Difficulty, ex int, lamp models.Lamp, grade models.Grade, miss int) models.PlayResult {
	return models.PlayResult{
		Chart:     models.Chart{SongID: id, Difficulty: d},
		Title:     "title " + id,
		ExScore:   ex,
		Lamp:      lamp,
		Grade:     grade,
		MissCount: miss,
		Judge:     models.Judge{PGreat: [2]int{ex / 2, 0}},
	}
}

func TestStore_RecordAndPlays(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []models.PlayResult{
		play("01000", models.SPA, 900, models.LampClear, models.GradeAA, 15),
		play("01001", models.SPH, 500, models.LampFailed, models.GradeC, 60),
	} {
		if err := s.Record(ctx, p); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	records, err := s.Plays(ctx, s.SessionID())
	if err != nil {
		t.Fatalf("Plays() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d; want 2", len(records))
	}
	first := records[0]
	if first.SongID != "01000" || first.Difficulty != "SPA" || first.ExScore != 900 || first.PGreat != 450 {
		t.Errorf("first = %+v", first)
	}
	if first.SessionID != s.SessionID().String() {
		t.Errorf("SessionID = %q", first.SessionID)
	}

	other, err := s.Plays(ctx, uuid.New())
	if err != nil || len(other) != 0 {
		t.Errorf("Plays(other session) = %v, %v", other, err)
	}
}

func TestStore_BestScore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	spa := models.Chart{SongID: "01000", Difficulty: models.SPA}

	if _, ok := s.BestScore(spa); ok {
		t.Error("BestScore() on empty history should report false")
	}

	for _, p := range []models.PlayResult{
		play("01000", models.SPA, 900, models.LampClear, models.GradeAA, 15),
		play("01000", models.SPA, 950, models.LampFailed, models.GradeAAA, 40),
		play("01000", models.SPA, 800, models.LampHardClear, models.GradeA, 9),
		play("01000", models.SPN, 300, models.LampFullCombo, models.GradeAAA, 0),
	} {
		if err := s.Record(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, ok := s.BestScore(spa)
	if !ok {
		t.Fatal("BestScore() = false")
	}
	want := models.TrackerInfo{Grade: models.GradeAAA, Lamp: models.LampHardClear, ExScore: 950, MissCount: 9}
	if got != want {
		t.Errorf("BestScore() = %+v; want %+v", got, want)
	}
}

func TestStore_BestScore_NoClearedPlay(t *testing.T) {
	s := openTestStore(t)
	chart := models.Chart{SongID: "01000", Difficulty: models.DPA}
	if err := s.Record(context.Background(), play("01000", models.DPA, 0, models.LampNP, models.GradeNP, 0)); err != nil {
		t.Fatal(err)
	}

	got, ok := s.BestScore(chart)
	if !ok || got != (models.TrackerInfo{}) {
		t.Errorf("BestScore() = %+v, %v; want zero value, true", got, ok)
	}
}
