// Package metrics はトラッカーの動作状況をPrometheus形式で公開します
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// Collector はトラッカーで使うメトリクスの集まり
type Collector struct {
	ticks         *prometheus.CounterVec
	songs         prometheus.Gauge
	trackedCharts prometheus.Gauge
	unlockChanges prometheus.Counter
	overflow      prometheus.Counter
	plays         *prometheus.CounterVec
	gameState     *prometheus.GaugeVec
	reports       *prometheus.CounterVec
	tickDuration  prometheus.Histogram
}

// New はメトリクスを作成し、reg に登録します
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infitracker_ticks_total",
				Help: "Poll ticks by outcome",
			},
			[]string{"status"},
		),
		songs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "infitracker_catalog_songs",
				Help: "Songs in the decoded catalog",
			},
		),
		trackedCharts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "infitracker_tracked_charts",
				Help: "Charts held in the tracker store",
			},
		),
		unlockChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "infitracker_unlock_changes_total",
				Help: "Unlock bitmask changes detected",
			},
		),
		overflow: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "infitracker_unlock_overflow_reads_total",
				Help: "Follow-up reads caused by unlock records missing from the catalog",
			},
		),
		plays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infitracker_plays_total",
				Help: "Finished plays by difficulty and lamp",
			},
			[]string{"difficulty", "lamp"},
		),
		gameState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "infitracker_game_state",
				Help: "1 for the current inferred game state",
			},
			[]string{"state"},
		),
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infitracker_reports_total",
				Help: "Outbound report events by kind and result",
			},
			[]string{"kind", "result"},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "infitracker_tick_duration_seconds",
				Help:    "Time spent in one poll tick",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		c.ticks, c.songs, c.trackedCharts, c.unlockChanges, c.overflow,
		c.plays, c.gameState, c.reports, c.tickDuration,
	)
	return c
}

// Tick は1回のポーリングの結果を記録します
func (c *Collector) Tick(ok bool) {
	status := "ok"
	if !ok {
		status = "skipped"
	}
	c.ticks.WithLabelValues(status).Inc()
}

// TickTimer はポーリング1回の所要時間を計るタイマーを返します
func (c *Collector) TickTimer() *prometheus.Timer {
	return prometheus.NewTimer(c.tickDuration)
}

// Catalog は楽曲数を記録します
func (c *Collector) Catalog(songs int) {
	c.songs.Set(float64(songs))
}

// TrackedCharts はトラッカーの譜面数を記録します
func (c *Collector) TrackedCharts(n int) {
	c.trackedCharts.Set(float64(n))
}

// UnlockChanges は検出した解禁状態の変化を加算します
func (c *Collector) UnlockChanges(n int) {
	c.unlockChanges.Add(float64(n))
}

// Overflow は解禁データの追加読み出し回数を加算します
func (c *Collector) Overflow(passes int) {
	c.overflow.Add(float64(passes))
}

// Play は終了したプレーを記録します
func (c *Collector) Play(result models.PlayResult) {
	c.plays.WithLabelValues(result.Chart.Difficulty.String(), result.Lamp.String()).Inc()
}

// State は現在の状態だけを1にします
func (c *Collector) State(current models.GameState) {
	for _, s := range []models.GameState{models.StateSongSelect, models.StatePlaying, models.StateResultScreen} {
		v := 0.0
		if s == current {
			v = 1
		}
		c.gameState.WithLabelValues(s.String()).Set(v)
	}
}

// Delivered は送信に成功したイベントを記録します
func (c *Collector) Delivered(kind string) {
	c.reports.WithLabelValues(kind, "delivered").Inc()
}

// Failed は送信に失敗したイベントを記録します
func (c *Collector) Failed(kind string) {
	c.reports.WithLabelValues(kind, "failed").Inc()
}

// Dropped はキューが一杯で捨てたイベントを記録します
func (c *Collector) Dropped(kind string) {
	c.reports.WithLabelValues(kind, "dropped").Inc()
}
