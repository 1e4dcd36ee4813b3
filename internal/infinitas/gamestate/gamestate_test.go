package gamestate

import (
	"context"
	"errors"
	"testing"

	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	"github.com/shiroemons/go-infitracker/internal/infinitas/mocks"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		prior   models.GameState
		markers Markers
		want    models.GameState
	}{
		{"プレー中マーカーが立っている", models.StateSongSelect, Markers{Playing: 1}, models.StatePlaying},
		{"リザルト画面からでもプレー中", models.StateResultScreen, Markers{Playing: 5, SongSelect: 1}, models.StatePlaying},
		{"選曲画面は継続する", models.StateSongSelect, Markers{SongSelect: 0}, models.StateSongSelect},
		{"プレー後に選曲画面マーカー", models.StatePlaying, Markers{SongSelect: 1}, models.StateSongSelect},
		{"プレー後にリザルト画面", models.StatePlaying, Markers{SongSelect: 0}, models.StateResultScreen},
		{"リザルト画面の継続", models.StateResultScreen, Markers{SongSelect: 2}, models.StateResultScreen},
		{"リザルト画面から選曲画面", models.StateResultScreen, Markers{SongSelect: 1}, models.StateSongSelect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.prior, tt.markers); got != tt.want {
				t.Errorf("Next(%s, %+v) = %s; want %s", tt.prior, tt.markers, got, tt.want)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		tr       Transition
		finished bool
		started  bool
	}{
		{Transition{models.StatePlaying, models.StateResultScreen}, true, false},
		{Transition{models.StatePlaying, models.StateSongSelect}, false, false},
		{Transition{models.StateResultScreen, models.StateResultScreen}, false, false},
		{Transition{models.StateSongSelect, models.StatePlaying}, false, true},
		{Transition{models.StatePlaying, models.StatePlaying}, false, false},
	}
	for _, tt := range tests {
		if got := tt.tr.Finished(); got != tt.finished {
			t.Errorf("%+v.Finished() = %v; want %v", tt.tr, got, tt.finished)
		}
		if got := tt.tr.Started(); got != tt.started {
			t.Errorf("%+v.Started() = %v; want %v", tt.tr, got, tt.started)
		}
	}
}

const (
	judgeData    = 0x5000
	playSettings = 0x6000
)

type fixture struct {
	t      *testing.T
	reader *memory.BufferReader
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, reader: memory.NewBufferReader(judgeData, 0x2000)}
}

func (f *fixture) set(playing, songSelect int32) {
	f.t.Helper()
	if err := f.reader.Write(judgeData+decoder.StateMarkerOffset, mocks.Int32(playing)); err != nil {
		f.t.Fatal(err)
	}
	if err := f.reader.Write(playSettings-decoder.SettingsMarkerOffset, mocks.Int32(songSelect)); err != nil {
		f.t.Fatal(err)
	}
}

func TestMachine_Step(t *testing.T) {
	f := newFixture(t)
	m := NewMachine(f.reader, judgeData, playSettings)
	ctx := context.Background()

	if m.State() != models.StateSongSelect {
		t.Fatalf("initial state = %s", m.State())
	}

	steps := []struct {
		playing, songSelect int32
		want                models.GameState
		finished            bool
	}{
		{0, 1, models.StateSongSelect, false},
		{1, 0, models.StatePlaying, false},
		{1, 0, models.StatePlaying, false},
		{0, 0, models.StateResultScreen, true},
		{0, 0, models.StateResultScreen, false},
		{0, 1, models.StateSongSelect, false},
		{0, 0, models.StateSongSelect, false},
	}
	for i, s := range steps {
		f.set(s.playing, s.songSelect)
		tr, err := m.Step(ctx)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if tr.To != s.want || tr.Finished() != s.finished {
			t.Errorf("step %d: %+v (finished=%v); want %s finished=%v", i, tr, tr.Finished(), s.want, s.finished)
		}
	}
}

func TestMachine_Step_ReadError(t *testing.T) {
	f := newFixture(t)
	m := NewMachine(f.reader, judgeData, playSettings)

	f.set(1, 0)
	if _, err := m.Step(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.reader.Error = memory.ErrAccessDenied
	tr, err := m.Step(context.Background())
	if !errors.Is(err, memory.ErrAccessDenied) {
		t.Fatalf("Step() error = %v; want ErrAccessDenied", err)
	}
	if tr.Changed() || m.State() != models.StatePlaying {
		t.Errorf("state changed on read error: %+v", tr)
	}
}

// failAt は指定したアドレスの読み出しだけ失敗させます
type failAt struct {
	*memory.BufferReader
	address uint64
	reads   int
}

func (r *failAt) Read(address uint64, length uint32) ([]byte, error) {
	if address == r.address {
		r.reads++
		return nil, memory.ErrAccessDenied
	}
	return r.BufferReader.Read(address, length)
}

func TestMachine_Step_SongSelectMarkerReadOnlyWhenNeeded(t *testing.T) {
	tests := []struct {
		name      string
		prior     int32
		playing   int32
		want      models.GameState
		wantReads int
		wantErr   bool
	}{
		{"プレー中マーカーが立っていれば読まない", 0, 1, models.StatePlaying, 0, false},
		{"選曲画面の継続では読まない", 0, 0, models.StateSongSelect, 0, false},
		{"プレー後は読む", 1, 0, models.StatePlaying, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := &failAt{BufferReader: f.reader, address: playSettings - decoder.SettingsMarkerOffset}
			m := NewMachine(r, judgeData, playSettings)

			if tt.prior != 0 {
				f.set(tt.prior, 0)
				if _, err := m.Step(context.Background()); err != nil {
					t.Fatal(err)
				}
			}
			f.set(tt.playing, 0)
			tr, err := m.Step(context.Background())
			if tt.wantErr != (err != nil) {
				t.Fatalf("Step() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tr.To != tt.want {
				t.Errorf("Step() = %+v; want %s", tr, tt.want)
			}
			if r.reads != tt.wantReads {
				t.Errorf("選曲画面マーカーの読み出し = %d回; want %d", r.reads, tt.wantReads)
			}
		})
	}
}
