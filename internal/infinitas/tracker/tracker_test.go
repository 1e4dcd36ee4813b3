package tracker

import (
	"errors"
	"testing"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	"github.com/shiroemons/go-infitracker/internal/infinitas/mocks"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

func chart(id string, d models.Difficulty) models.Chart {
	return models.Chart{SongID: id, Difficulty: d}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewStore(nil)
	s.Set(chart("01000", models.SPA), models.TrackerInfo{Grade: models.GradeAA, Lamp: models.LampHardClear, ExScore: 1450, MissCount: 12})
	s.Set(chart("01000", models.SPN), models.TrackerInfo{Grade: models.GradeAAA, Lamp: models.LampFullCombo, ExScore: 600, MissCount: 0})
	s.Set(chart("25034", models.DPH), models.TrackerInfo{})

	fs := mocks.NewMockFileSystem()
	if err := s.Save(fs, "tracker.db"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	want := "01000,SPN,AAA,FC,600,0\n01000,SPA,AA,HC,1450,12\n25034,DPH,NP,NP,0,0\n"
	if got := string(fs.Files["tracker.db"]); got != want {
		t.Errorf("tracker.db =\n%s\nwant\n%s", got, want)
	}

	loaded := NewStore(nil)
	skipped, err := loaded.Load(fs, "tracker.db")
	if err != nil || skipped != 0 {
		t.Fatalf("Load() = %d, %v", skipped, err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", loaded.Len())
	}
	for _, c := range s.Charts() {
		want, _ := s.Get(c)
		if got, ok := loaded.Get(c); !ok || got != want {
			t.Errorf("%s = %+v; want %+v", c, got, want)
		}
	}
}

func TestStore_Load(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantLen     int
		wantSkipped int
	}{
		{"ファイルがない", "", 0, 0},
		{"正常", "01000,SPH,A,EC,700,30\n", 1, 0},
		{"列数不足", "01000,SPH,A\n01001,SPA,B,NC,900,40\n", 1, 1},
		{"不明な難易度", "01000,XYZ,A,EC,700,30\n", 0, 1},
		{"不明なランプ", "01000,SPH,A,GOLD,700,30\n", 0, 1},
		{"数値でない", "01000,SPH,A,EC,abc,30\n", 0, 1},
		{"CRLFと空行", "01000,SPH,A,EC,700,30\r\n\r\n", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewMockFileSystem()
			if tt.content != "" {
				fs.Files["tracker.db"] = []byte(tt.content)
			}
			logger := &mocks.MockLogger{}
			s := NewStore(logger)

			skipped, err := s.Load(fs, "tracker.db")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if s.Len() != tt.wantLen || skipped != tt.wantSkipped {
				t.Errorf("Len() = %d, skipped = %d; want %d, %d", s.Len(), skipped, tt.wantLen, tt.wantSkipped)
			}
			if tt.wantSkipped > 0 && !logger.Contains("tracker.db:") {
				t.Errorf("skipped row was not logged: %v", logger.Lines)
			}
		})
	}
}

func TestStore_Load_ReadError(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["tracker.db"] = []byte("x")
	fs.Error = errors.New("permission denied")

	// FileExists はエラーを返さないためファイルありとして読み込みに進む
	if _, err := NewStore(nil).Load(fs, "tracker.db"); !errors.Is(err, ErrLoad) {
		t.Errorf("Load() error = %v; want ErrLoad", err)
	}
}

func newCatalog() *catalog.Catalog {
	cat := catalog.New()
	a := &models.SongInfo{ID: "01000", Title: "5.1.1.", Type: models.UnlockBase}
	a.Level[models.SPN], a.TotalNotes[models.SPN] = 1, 156
	a.Level[models.SPA], a.TotalNotes[models.SPA] = 5, 507
	cat.Add(a)

	b := &models.SongInfo{ID: "01001", Title: "GAMBOL", Type: models.UnlockBits}
	b.Level[models.SPH], b.TotalNotes[models.SPH] = 4, 300
	b.Level[models.DPH], b.TotalNotes[models.DPH] = 5, 310
	cat.Add(b)
	return cat
}

func TestStore_Merge(t *testing.T) {
	cat := newCatalog()
	src := mocks.NewMockScoreSource()
	src.Scores[chart("01000", models.SPA)] = models.TrackerInfo{Lamp: models.LampClear, ExScore: 900, MissCount: 15}

	s := NewStore(nil)
	// ファイルにある値は上書きしない
	kept := models.TrackerInfo{Grade: models.GradeAAA, Lamp: models.LampFullCombo, ExScore: 310}
	s.Set(chart("01000", models.SPN), kept)

	added := s.Merge(cat, src)
	if added != 3 {
		t.Fatalf("Merge() = %d; want 3", added)
	}
	if got, _ := s.Get(chart("01000", models.SPN)); got != kept {
		t.Errorf("existing entry overwritten: %+v", got)
	}

	// 1014点中900点 → 900*9 = 8100 > 7*1014 = 7098
	got, _ := s.Get(chart("01000", models.SPA))
	want := models.TrackerInfo{Grade: models.GradeAA, Lamp: models.LampClear, ExScore: 900, MissCount: 15}
	if got != want {
		t.Errorf("SPA = %+v; want %+v", got, want)
	}

	// 記録なしは未プレー
	if got, _ := s.Get(chart("01001", models.DPH)); got != (models.TrackerInfo{}) {
		t.Errorf("DPH = %+v; want zero value", got)
	}

	// レベルのない譜面は追加しない
	if _, ok := s.Get(chart("01001", models.SPN)); ok {
		t.Error("SPN without level should not be tracked")
	}

	if again := s.Merge(cat, src); again != 0 {
		t.Errorf("second Merge() = %d; want 0", again)
	}
}

func TestStore_Record(t *testing.T) {
	c := chart("01000", models.SPA)
	base := models.TrackerInfo{Grade: models.GradeA, Lamp: models.LampClear, ExScore: 800, MissCount: 20}

	tests := []struct {
		name    string
		prior   *models.TrackerInfo
		result  models.PlayResult
		want    models.TrackerInfo
		changed bool
	}{
		{
			name:    "スコア更新",
			prior:   &base,
			result:  models.PlayResult{Chart: c, ExScore: 850, Grade: models.GradeAA, Lamp: models.LampFailed, MissCount: 40},
			want:    models.TrackerInfo{Grade: models.GradeAA, Lamp: models.LampClear, ExScore: 850, MissCount: 20},
			changed: true,
		},
		{
			name:    "ランプとミスカウント更新",
			prior:   &base,
			result:  models.PlayResult{Chart: c, ExScore: 700, Grade: models.GradeB, Lamp: models.LampHardClear, MissCount: 10},
			want:    models.TrackerInfo{Grade: models.GradeA, Lamp: models.LampHardClear, ExScore: 800, MissCount: 10},
			changed: true,
		},
		{
			name:    "更新なし",
			prior:   &base,
			result:  models.PlayResult{Chart: c, ExScore: 800, Grade: models.GradeA, Lamp: models.LampEasyClear, MissCount: 25},
			want:    base,
			changed: false,
		},
		{
			name:    "未プレーからの初回",
			prior:   &models.TrackerInfo{},
			result:  models.PlayResult{Chart: c, ExScore: 500, Grade: models.GradeD, Lamp: models.LampFailed, MissCount: 80},
			want:    models.TrackerInfo{Grade: models.GradeD, Lamp: models.LampFailed, ExScore: 500, MissCount: 80},
			changed: true,
		},
		{
			name:    "記録のない譜面",
			prior:   nil,
			result:  models.PlayResult{Chart: c, ExScore: 10, Grade: models.GradeF, Lamp: models.LampFailed, MissCount: 200},
			want:    models.TrackerInfo{Grade: models.GradeF, Lamp: models.LampFailed, ExScore: 10, MissCount: 200},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil)
			if tt.prior != nil {
				s.Set(c, *tt.prior)
			}
			if got := s.Record(tt.result); got != tt.changed {
				t.Errorf("Record() = %v; want %v", got, tt.changed)
			}
			if got, _ := s.Get(c); got != tt.want {
				t.Errorf("after Record() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestStore_Save_Error(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.WriteError = errors.New("disk full")
	if err := NewStore(nil).Save(fs, "tracker.db"); !errors.Is(err, ErrSave) {
		t.Errorf("Save() error = %v; want ErrSave", err)
	}
}
