package tracker

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

type unlockSet map[models.Chart]bool

func (u unlockSet) Unlocked(c models.Chart) bool { return u[c] }

func TestHeader(t *testing.T) {
	cols := strings.Split(Header(), "\t")
	if len(cols) != 6+6*6 {
		t.Fatalf("columns = %d; want 42", len(cols))
	}
	if cols[0] != "title" || cols[5] != "Cost Another" || cols[6] != "SPN" || cols[41] != "DPA Miss Count" {
		t.Errorf("Header() = %v", cols)
	}
}

func TestStore_Export(t *testing.T) {
	cat := newCatalog()
	s := NewStore(nil)
	s.Merge(cat, nil)
	s.Set(chart("01001", models.SPH), models.TrackerInfo{Grade: models.GradeAA, Lamp: models.LampHardClear, ExScore: 520, MissCount: 3})

	unlocks := unlockSet{chart("01001", models.SPH): true}

	var buf bytes.Buffer
	if err := s.Export(&buf, cat, unlocks, map[string]string{}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d; want header + 2", len(lines))
	}

	// 01001: SPN/SPA/DPN/DPA は記録なし、SPH はビット解禁 500*(4+5)
	want := "GAMBOL\tBits\tBits\t" +
		"\t4500\t\t" +
		"\t\t\t\t" +
		"TRUE\t4\tHC\tAA\t520\t3\t" +
		"\t\t\t\t" +
		"\t\t\t\t" +
		"FALSE\t5\tNP\tNP\t0\t0\t" +
		"\t\t\t\t"
	if lines[2] != want {
		t.Errorf("row =\n%q\nwant\n%q", lines[2], want)
	}

	// 01000 は Base なのでコスト0
	if !strings.HasPrefix(lines[1], "5.1.1.\tBase\tBase\t0\t\t0\t") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestStore_Export_UntrackedChartHasFourBlankCells(t *testing.T) {
	cat := newCatalog()
	s := NewStore(nil)
	s.Set(chart("01000", models.SPN), models.TrackerInfo{Grade: models.GradeB, Lamp: models.LampEasyClear, ExScore: 200, MissCount: 9})

	var buf bytes.Buffer
	if err := s.Export(&buf, cat, nil, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d; want header + 1 (songs without tracked charts are omitted)", len(lines))
	}

	want := "5.1.1.\tBase\tBase\t" +
		"0\t\t\t" +
		"FALSE\t1\tEC\tB\t200\t9\t" +
		strings.Repeat("\t\t\t\t", 5)
	if lines[1] != want {
		t.Errorf("row =\n%q\nwant\n%q", lines[1], want)
	}
}

func TestStore_Export_CustomType(t *testing.T) {
	cat := newCatalog()
	s := NewStore(nil)
	s.Set(chart("01001", models.SPH), models.TrackerInfo{})

	var buf bytes.Buffer
	if err := s.Export(&buf, cat, nil, map[string]string{"01001": "Event"}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[1], "GAMBOL\tBits\tEvent\t\t0\t\t") {
		t.Errorf("row = %q; custom type should replace label and zero the cost", lines[1])
	}
}
