package report

import (
	"context"
	"sync"

	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// DefaultQueueSize は送信待ちイベントの上限
const DefaultQueueSize = 64

// Observer は送信結果を受け取ります
type Observer interface {
	Delivered(kind string)
	Failed(kind string)
	Dropped(kind string)
}

type nopObserver struct{}

func (nopObserver) Delivered(string) {}
func (nopObserver) Failed(string)    {}
func (nopObserver) Dropped(string)   {}

// event はキューに積むイベント。kind に対応するフィールドだけが入ります
type event struct {
	kind       string
	unlock     models.UnlockChange
	unlockType models.UnlockTypeChange
	song       models.SongAdded
	play       models.PlayResult
}

// QueueOptions はQueueの設定
type QueueOptions struct {
	Size     int
	Logger   interfaces.Logger
	Observer Observer
}

// Queue は送信を別のgoroutineで行う Sink です。
// キューが一杯のときはイベントを捨て、呼び出し側を待たせません
type Queue struct {
	sink     interfaces.Sink
	events   chan event
	logger   interfaces.Logger
	observer Observer

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewQueue は送信用のgoroutineを起動してQueueを返します。
// ctx がキャンセルされると送信中のリクエストも中断されます
func NewQueue(ctx context.Context, sink interfaces.Sink, opts QueueOptions) *Queue {
	size := opts.Size
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &Queue{
		sink:     sink,
		events:   make(chan event, size),
		logger:   opts.Logger,
		observer: opts.Observer,
		done:     make(chan struct{}),
	}
	if q.logger == nil {
		q.logger = nopLogger{}
	}
	if q.observer == nil {
		q.observer = nopObserver{}
	}

	go q.run(ctx)
	return q
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	for ev := range q.events {
		var err error
		switch ev.kind {
		case KindUnlock:
			err = q.sink.ReportUnlock(ctx, ev.unlock)
		case KindUnlockType:
			err = q.sink.ReportUnlockType(ctx, ev.unlockType)
		case KindSong:
			err = q.sink.ReportSong(ctx, ev.song)
		case KindPlay:
			err = q.sink.ReportPlay(ctx, ev.play)
		}
		if err != nil {
			q.observer.Failed(ev.kind)
			q.logger.Printf("送信に失敗しました (%s): %v\n", ev.kind, err)
			continue
		}
		q.observer.Delivered(ev.kind)
	}
}

func (q *Queue) enqueue(ev event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- ev:
	default:
		q.observer.Dropped(ev.kind)
		q.logger.Printf("送信キューが一杯のためイベントを破棄しました (%s)\n", ev.kind)
	}
	return nil
}

// enqueueWait はキューに空きができるまで待って積みます。
// 起動時の楽曲の同期のように取りこぼしたくないイベントに使います
func (q *Queue) enqueueWait(ctx context.Context, ev event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- ev:
		return nil
	case <-ctx.Done():
		q.observer.Dropped(ev.kind)
		return ctx.Err()
	}
}

// ReportUnlock は解禁状態の変化をキューに積みます
func (q *Queue) ReportUnlock(ctx context.Context, change models.UnlockChange) error {
	return q.enqueue(event{kind: KindUnlock, unlock: change})
}

// ReportUnlockType は解禁種別の変化をキューに積みます。キューが一杯なら空くまで待ちます
func (q *Queue) ReportUnlockType(ctx context.Context, change models.UnlockTypeChange) error {
	return q.enqueueWait(ctx, event{kind: KindUnlockType, unlockType: change})
}

// ReportSong は新しい楽曲をキューに積みます。キューが一杯なら空くまで待ちます
func (q *Queue) ReportSong(ctx context.Context, added models.SongAdded) error {
	return q.enqueueWait(ctx, event{kind: KindSong, song: added})
}

// ReportPlay はプレー結果をキューに積みます
func (q *Queue) ReportPlay(ctx context.Context, result models.PlayResult) error {
	return q.enqueue(event{kind: KindPlay, play: result})
}

// Close は新しいイベントの受け付けを止め、積まれている分を送り終えるまで待ちます
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()
	<-q.done
}
