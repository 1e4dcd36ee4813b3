// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shiroemons/go-infitracker/internal/infinitas/config"
	"github.com/shiroemons/go-infitracker/internal/infinitas/fileutil"
	"github.com/shiroemons/go-infitracker/internal/infinitas/history"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/metrics"
	"github.com/shiroemons/go-infitracker/internal/infinitas/report"
	"github.com/shiroemons/go-infitracker/internal/infinitas/session"
	"github.com/shiroemons/go-infitracker/internal/infinitas/update"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

// FileSystem は設定ファイルの探索にも使うファイルシステム
type FileSystem interface {
	interfaces.FileSystem
	Getwd() (string, error)
	Executable() (string, error)
}

// Process は接続中のゲームプロセス
type Process interface {
	memory.Reader
	Alive() bool
	Close() error
}

// Hooker はゲームプロセスを探して接続します
type Hooker interface {
	Find(name string) (uint32, error)
	Open(pid uint32) (Process, error)
}

type processHooker struct{}

func (processHooker) Find(name string) (uint32, error) {
	return memory.FindProcess(name)
}

func (processHooker) Open(pid uint32) (Process, error) {
	p, err := memory.OpenProcess(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// App はアプリケーションのメインロジックを管理します
type App struct {
	config     *config.Config
	logger     interfaces.Logger
	fs         FileSystem
	hooker     Hooker
	registerer prometheus.Registerer
	out        io.Writer
	pid        uint32
}

// Options はAppの設定オプション
type Options struct {
	FileSystem FileSystem
	Hooker     Hooker
	Logger     interfaces.Logger
	// Registerer が nil の場合はメトリクスを記録しません
	Registerer prometheus.Registerer
	Out        io.Writer
	// PID が 0 以外の場合はプロセス名で探さずにそのプロセスへ接続します
	PID uint32
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	a := &App{
		config:     cfg,
		logger:     opts.Logger,
		fs:         opts.FileSystem,
		hooker:     opts.Hooker,
		registerer: opts.Registerer,
		out:        opts.Out,
		pid:        opts.PID,
	}
	if a.logger == nil {
		a.logger = config.NewDebugLogger(false)
	}
	if a.fs == nil {
		a.fs = fileutil.NewOSFileSystem()
	}
	if a.hooker == nil {
		a.hooker = processHooker{}
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	return a
}

// Run はゲームに接続し、ゲームが終了するかキャンセルされるまで記録を続けます
func (a *App) Run(ctx context.Context) error {
	proc, err := a.hook(ctx)
	if err != nil {
		return err
	}
	defer proc.Close()

	if a.config.Update.Enabled && a.config.Update.Server != "" {
		a.updateSupportFiles(ctx)
	}

	offsets, err := a.loadOffsets()
	if err != nil {
		return err
	}
	a.logger.Printf("オフセット: %s\n", offsets)

	corrections, customTypes, err := a.loadTables()
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	if a.registerer != nil {
		collector = metrics.New(a.registerer)
	}

	opts := session.Options{
		FileSystem:  a.fs,
		Logger:      a.logger,
		Corrections: corrections,
		CustomTypes: customTypes,
		Out:         a.out,
	}
	queueOpts := report.QueueOptions{
		Size:   a.config.Remote.QueueSize,
		Logger: a.logger,
	}
	if collector != nil {
		opts.Observer = collector
		queueOpts.Observer = collector
	}

	if a.config.Output.History {
		store, err := history.Open(a.config.Files.History, uuid.New())
		if err != nil {
			fmt.Fprintf(os.Stderr, "警告: プレー履歴を開けませんでした: %v\n", err)
		} else {
			defer store.Close()
			a.logger.Printf("セッションID: %s\n", store.SessionID())
			opts.History = store
		}
	}

	queue := report.NewQueue(ctx, a.sink(), queueOpts)
	defer queue.Close()
	opts.Sink = queue

	sess := session.New(proc, a.config, offsets, opts)
	if err := sess.Start(ctx); err != nil {
		if errors.Is(err, memory.ErrProcessGone) {
			fmt.Fprintln(a.out, "ゲームが終了しました")
			return nil
		}
		return err
	}

	return a.poll(ctx, proc, sess, collector)
}

// hook はゲームプロセスが見つかるまで待って接続します
func (a *App) hook(ctx context.Context) (Process, error) {
	pid := a.pid
	if pid == 0 {
		fmt.Fprintf(a.out, "%s を探しています...\n", a.config.Process.Name)
		for {
			found, err := a.hooker.Find(a.config.Process.Name)
			if err == nil {
				pid = found
				break
			}
			if !errors.Is(err, memory.ErrProcessNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrHook, err)
			}
			if err := wait(ctx, a.config.Hook.Interval); err != nil {
				return nil, err
			}
		}
	}

	proc, err := a.hooker.Open(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHook, err)
	}
	fmt.Fprintf(a.out, "プロセス %d に接続しました\n", pid)
	return proc, nil
}

// updateSupportFiles は補助ファイルの新しい版があれば置き換えます。失敗しても手元の版で続行します
func (a *App) updateSupportFiles(ctx context.Context) {
	updater := update.New(a.config.Update.Server, a.fs, update.Options{
		Timeout: a.config.Update.Timeout,
		Logger:  a.logger,
		Out:     a.out,
	})

	files := []struct {
		name  string
		apply func(context.Context, string) (bool, error)
	}{
		{a.config.Files.Offsets, updater.Offsets},
		{a.config.Files.EncodingFixes, updater.SupportFile},
		{a.config.Files.CustomTypes, updater.SupportFile},
	}
	for _, f := range files {
		path, err := fileutil.Locate(a.fs, f.name)
		if err != nil {
			a.logger.Printf("%s の更新を確認できませんでした: %v\n", f.name, err)
			continue
		}
		if _, err := f.apply(ctx, path); err != nil {
			fmt.Fprintf(a.out, "警告: %s を更新できませんでした: %v\n", f.name, err)
		}
	}
}

func (a *App) loadOffsets() (*config.Offsets, error) {
	path, err := fileutil.Locate(a.fs, a.config.Files.Offsets)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrLoadOffsets, err)
	}
	return config.LoadOffsets(a.fs, path)
}

func (a *App) loadTables() (corrections, customTypes map[string]string, err error) {
	path, err := fileutil.Locate(a.fs, a.config.Files.EncodingFixes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoadTables, err)
	}
	corrections, err = config.LoadEncodingFixes(a.fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoadTables, err)
	}

	path, err = fileutil.Locate(a.fs, a.config.Files.CustomTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoadTables, err)
	}
	customTypes, err = config.LoadCustomTypes(a.fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoadTables, err)
	}
	a.logger.Printf("補正テーブル: %d件, カスタム種別: %d件\n", len(corrections), len(customTypes))
	return corrections, customTypes, nil
}

// sink は送信先を組み立てます。リモート保存が無効ならログにだけ出力します
func (a *App) sink() interfaces.Sink {
	sinks := report.MultiSink{report.NewLogSink(a.logger)}
	if a.config.Remote.Enabled && a.config.Remote.Server != "" {
		sinks = append(sinks, report.NewHTTPSink(a.config.Remote.Server, a.config.Remote.APIKey, a.config.Remote.Timeout))
	}
	return sinks
}

// poll はゲームが終了するかキャンセルされるまで一定間隔で記録します
func (a *App) poll(ctx context.Context, proc Process, sess *session.Session, collector *metrics.Collector) error {
	ticker := time.NewTicker(a.config.Poll.Interval)
	defer ticker.Stop()

	for {
		if !proc.Alive() {
			fmt.Fprintln(a.out, "ゲームが終了しました")
			return nil
		}

		var timer *prometheus.Timer
		if collector != nil {
			timer = collector.TickTimer()
		}
		err := sess.Tick(ctx)
		if timer != nil {
			timer.ObserveDuration()
		}
		if errors.Is(err, memory.ErrProcessGone) {
			fmt.Fprintln(a.out, "ゲームが終了しました")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
