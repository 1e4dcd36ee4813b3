// Package gamestate はメモリ上のマーカーからゲームの画面状態を推定します
package gamestate

import (
	"context"

	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

// Markers はある時点で読み取ったマーカーの値
type Markers struct {
	// Playing は判定データ + 96 の値。プレー中は 0 以外
	Playing int32
	// SongSelect はプレー設定 - 20 の値。選曲画面では 1
	SongSelect int32
}

// rule は遷移表の1行。when が真なら to に遷移します
type rule struct {
	name string
	when func(prior models.GameState, m Markers) bool
	to   func(prior models.GameState) models.GameState
}

// transitions は上から順に評価され、最初に一致した行が採用されます
var transitions = []rule{
	{
		name: "プレー中マーカー",
		when: func(_ models.GameState, m Markers) bool { return m.Playing != 0 },
		to:   func(models.GameState) models.GameState { return models.StatePlaying },
	},
	{
		name: "選曲画面の継続",
		when: func(prior models.GameState, _ Markers) bool { return prior == models.StateSongSelect },
		to:   func(models.GameState) models.GameState { return models.StateSongSelect },
	},
	{
		name: "選曲画面マーカー",
		when: func(_ models.GameState, m Markers) bool { return m.SongSelect == 1 },
		to:   func(models.GameState) models.GameState { return models.StateSongSelect },
	},
	{
		name: "リザルト画面",
		when: func(models.GameState, Markers) bool { return true },
		to:   func(models.GameState) models.GameState { return models.StateResultScreen },
	},
}

// Next は前回の状態とマーカーから次の状態を決めます
func Next(prior models.GameState, m Markers) models.GameState {
	for _, r := range transitions {
		if r.when(prior, m) {
			return r.to(prior)
		}
	}
	return prior
}

// Transition は1回の判定での状態の変化
type Transition struct {
	From models.GameState
	To   models.GameState
}

// Changed は状態が変わったかどうかを返します
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Finished はプレーが終わってリザルト画面に移った瞬間かどうかを返します
func (t Transition) Finished() bool {
	return t.From == models.StatePlaying && t.To == models.StateResultScreen
}

// Started はプレーが始まった瞬間かどうかを返します
func (t Transition) Started() bool {
	return t.From != models.StatePlaying && t.To == models.StatePlaying
}

// Machine はゲームの状態を保持します
type Machine struct {
	reader       memory.Reader
	judgeData    uint64
	playSettings uint64
	state        models.GameState
}

// NewMachine は選曲画面から始まるMachineを作成します
func NewMachine(reader memory.Reader, judgeData, playSettings uint64) *Machine {
	return &Machine{
		reader:       reader,
		judgeData:    judgeData,
		playSettings: playSettings,
		state:        models.StateSongSelect,
	}
}

// State は現在の状態を返します
func (m *Machine) State() models.GameState {
	return m.state
}

// Step はマーカーを読み取って状態を1回更新します。
// 読み出しに失敗した場合は状態を変えずにエラーを返します
func (m *Machine) Step(ctx context.Context) (Transition, error) {
	select {
	case <-ctx.Done():
		return Transition{From: m.state, To: m.state}, ctx.Err()
	default:
	}

	markers, err := m.readMarkers()
	if err != nil {
		return Transition{From: m.state, To: m.state}, err
	}

	t := Transition{From: m.state, To: Next(m.state, markers)}
	m.state = t.To
	return t, nil
}

// readMarkers はプレー中マーカーを読み、遷移表が必要とする場合だけ選曲画面マーカーを読みます
func (m *Machine) readMarkers() (Markers, error) {
	var markers Markers

	playingAddr := m.judgeData + decoder.StateMarkerOffset
	buf, err := m.reader.Read(playingAddr, 4)
	if err != nil {
		return markers, apperrors.NewReadError("プレー中マーカーの読み出し", playingAddr, 4, err)
	}
	markers.Playing = decoder.DecodeStateMarker(buf)
	if markers.Playing != 0 || m.state == models.StateSongSelect {
		return markers, nil
	}

	selectAddr := m.playSettings - decoder.SettingsMarkerOffset
	buf, err = m.reader.Read(selectAddr, 4)
	if err != nil {
		return markers, apperrors.NewReadError("選曲画面マーカーの読み出し", selectAddr, 4, err)
	}
	markers.SongSelect = decoder.DecodeStateMarker(buf)

	return markers, nil
}
