// Package session はゲーム1回分の起動から終了までの状態を保持し、ポーリング1回分の処理を行います
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shiroemons/go-infitracker/internal/infinitas/catalog"
	"github.com/shiroemons/go-infitracker/internal/infinitas/config"
	"github.com/shiroemons/go-infitracker/internal/infinitas/fileutil"
	"github.com/shiroemons/go-infitracker/internal/infinitas/gamestate"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
	"github.com/shiroemons/go-infitracker/internal/infinitas/playdata"
	"github.com/shiroemons/go-infitracker/internal/infinitas/tracker"
	"github.com/shiroemons/go-infitracker/internal/infinitas/unlock"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

// Observer はセッションの動作状況を受け取ります (metrics.Collector が実装します)
type Observer interface {
	Tick(ok bool)
	Catalog(songs int)
	TrackedCharts(n int)
	UnlockChanges(n int)
	Overflow(passes int)
	Play(result models.PlayResult)
	State(current models.GameState)
}

// History はプレー履歴の保存先で、自己ベストの補完にも使います
type History interface {
	interfaces.ScoreSource
	Record(ctx context.Context, result models.PlayResult) error
}

// Options はSessionの設定オプション
type Options struct {
	FileSystem  interfaces.FileSystem
	Logger      interfaces.Logger
	Sink        interfaces.Sink
	Observer    Observer
	History     History
	Corrections map[string]string
	CustomTypes map[string]string
	Out         io.Writer
	Now         func() time.Time
	// Wait は起動時の待ち合わせに使います。nil の場合は実際に待ちます
	Wait func(ctx context.Context, d time.Duration) error
}

// Session はゲーム1回分の楽曲リスト、解禁データ、自己ベスト、状態を保持します
type Session struct {
	cfg         *config.Config
	offsets     *config.Offsets
	reader      memory.Reader
	fs          interfaces.FileSystem
	logger      interfaces.Logger
	sink        interfaces.Sink
	observer    Observer
	history     History
	corrections map[string]string
	customTypes map[string]string
	out         io.Writer
	now         func() time.Time
	wait        func(ctx context.Context, d time.Duration) error

	catalog       *catalog.Catalog
	unlocks       *unlock.Tracker
	store         *tracker.Store
	machine       *gamestate.Machine
	sessionFile   string
	headerWritten bool
	// trackerLocked が true の間はトラッカーファイルを上書きしません
	trackerLocked bool
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type nopSink struct{}

func (nopSink) ReportUnlock(context.Context, models.UnlockChange) error         { return nil }
func (nopSink) ReportUnlockType(context.Context, models.UnlockTypeChange) error { return nil }
func (nopSink) ReportSong(context.Context, models.SongAdded) error              { return nil }
func (nopSink) ReportPlay(context.Context, models.PlayResult) error             { return nil }

type nopObserver struct{}

func (nopObserver) Tick(bool)              {}
func (nopObserver) Catalog(int)            {}
func (nopObserver) TrackedCharts(int)      {}
func (nopObserver) UnlockChanges(int)      {}
func (nopObserver) Overflow(int)           {}
func (nopObserver) Play(models.PlayResult) {}
func (nopObserver) State(models.GameState) {}

// New は新しいSessionを作成します
func New(reader memory.Reader, cfg *config.Config, offsets *config.Offsets, opts Options) *Session {
	s := &Session{
		cfg:         cfg,
		offsets:     offsets,
		reader:      reader,
		fs:          opts.FileSystem,
		logger:      opts.Logger,
		sink:        opts.Sink,
		observer:    opts.Observer,
		history:     opts.History,
		corrections: opts.Corrections,
		customTypes: opts.CustomTypes,
		out:         opts.Out,
		now:         opts.Now,
		wait:        opts.Wait,
	}
	if s.fs == nil {
		s.fs = fileutil.NewOSFileSystem()
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}
	if s.sink == nil {
		s.sink = nopSink{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.wait == nil {
		s.wait = sleep
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fatal はポーリングを続けられないエラーかどうかを返します
func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, memory.ErrProcessGone) || ctx.Err() != nil
}

// Start は楽曲リストが揃うのを待って読み込み、自己ベストを準備します。
// プロセスが終了した場合とキャンセルされた場合だけエラーを返します
func (s *Session) Start(ctx context.Context) error {
	difficulty, err := models.ParseDifficulty(s.cfg.Probe.Difficulty)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProbe, err)
	}
	probe := catalog.Probe{
		SongID:     s.cfg.Probe.SongID,
		Difficulty: difficulty,
		MinNotes:   s.cfg.Probe.MinNotes,
	}
	marker := catalog.Marker{Title: s.cfg.Probe.Marker, FirstUnlockID: s.cfg.Probe.FirstUnlockID}

	builder := catalog.NewBuilder(s.reader, s.offsets.SongList, catalog.BuilderOptions{
		Corrections: s.corrections,
		MaxEntries:  s.cfg.Catalog.MaxEntries,
		Logger:      s.logger,
	})

	fmt.Fprintln(s.out, "楽曲リストの読み込みを待っています...")
	for {
		ok, err := builder.Available(ctx, s.offsets.UnlockData, marker)
		if err != nil {
			if fatal(ctx, err) {
				return err
			}
			s.logger.Printf("楽曲リストの確認に失敗しました: %v\n", err)
		}
		if ok {
			break
		}
		if err := s.wait(ctx, s.cfg.Hook.Interval); err != nil {
			return err
		}
	}

	for {
		cat, err := builder.Build(ctx)
		if err == nil {
			err = cat.CheckPopulated(probe)
		}
		switch {
		case err == nil:
			s.catalog = cat
		case errors.Is(err, catalog.ErrNotPopulated):
			fmt.Fprintln(s.out, "楽曲リストがまだ揃っていないため、再読み込みします")
			s.logger.Printf("%v\n", err)
		case fatal(ctx, err):
			return err
		default:
			s.logger.Printf("楽曲リストの読み込みに失敗しました: %v\n", err)
		}
		if s.catalog != nil {
			break
		}
		if err := s.wait(ctx, s.cfg.Probe.RetryDelay); err != nil {
			return err
		}
	}
	s.observer.Catalog(s.catalog.Len())
	fmt.Fprintf(s.out, "楽曲リストを読み込みました (%d曲)\n", s.catalog.Len())

	if s.cfg.Output.SongList {
		s.writeSongList()
	}

	s.unlocks = unlock.NewTracker(s.reader, s.offsets.UnlockData, s.catalog, unlock.Options{
		PassLimit: s.cfg.Unlock.PassLimit,
		Logger:    s.logger,
	})
	if _, err := s.unlocks.Update(ctx); err != nil {
		if fatal(ctx, err) {
			return err
		}
		s.logger.Printf("解禁データの読み込みに失敗しました: %v\n", err)
	}

	if s.cfg.Remote.Enabled {
		s.syncCatalog(ctx)
	}

	s.store = tracker.NewStore(s.logger)
	skipped, err := s.store.Load(s.fs, s.cfg.Files.Tracker)
	if err != nil {
		s.logger.Printf("トラッカーファイルを読み込めませんでした: %v\n", err)
		fmt.Fprintln(s.out, "トラッカーファイルを読み込めなかったため、このセッションでは上書きしません")
		s.trackerLocked = true
	}
	if skipped > 0 {
		fmt.Fprintf(s.out, "トラッカーファイルの不正な行を%d件読み飛ばしました\n", skipped)
		s.backupTracker()
	}
	var source interfaces.ScoreSource
	if s.history != nil {
		source = s.history
	}
	if added := s.store.Merge(s.catalog, source); added > 0 {
		s.logger.Printf("トラッカーに%d譜面を追加しました\n", added)
	}

	s.machine = gamestate.NewMachine(s.reader, s.offsets.JudgeData, s.offsets.PlaySettings)
	s.sessionFile = fileutil.SessionFilename(s.cfg.Files.SessionDir, s.now())
	s.persist()
	return nil
}

// Tick はポーリング1回分の処理を行います。
// 読み出しに失敗した場合はその回の処理を打ち切ってエラーを返し、状態は前回のまま残ります
func (s *Session) Tick(ctx context.Context) error {
	if s.catalog == nil {
		return ErrNotStarted
	}

	changes, err := s.unlocks.Update(ctx)
	if err != nil {
		return s.skip(err)
	}
	s.observer.Overflow(s.unlocks.OverflowPasses())
	s.observer.UnlockChanges(len(changes))
	for _, change := range changes {
		s.logger.Printf("解禁状態が変化しました: %s -> %d\n", change.SongID, change.Unlocks)
		if err := s.sink.ReportUnlock(ctx, change); err != nil {
			s.logger.Printf("解禁状態の送信に失敗しました: %v\n", err)
		}
	}

	transition, err := s.machine.Step(ctx)
	if err != nil {
		return s.skip(err)
	}
	s.observer.State(transition.To)
	if transition.Changed() {
		fmt.Fprintf(s.out, "状態: %s\n", transition.To)
	}
	if transition.Started() && s.cfg.Output.CurrentSong {
		s.writeCurrentSong(ctx)
	}
	if transition.Finished() {
		s.finishPlay(ctx)
	}

	s.persist()
	s.observer.Tick(true)
	return nil
}

func (s *Session) skip(err error) error {
	s.observer.Tick(false)
	s.logger.Printf("読み出しに失敗したため今回の処理をスキップします: %v\n", err)
	return err
}

// finishPlay はリザルト画面のプレー結果を取り込みます
func (s *Session) finishPlay(ctx context.Context) {
	result, err := playdata.Fetch(ctx, s.reader, s.offsets, s.catalog)
	if err != nil {
		s.logger.Printf("プレー結果を読み取れませんでした: %v\n", err)
		return
	}
	at := s.now()

	if song, ok := s.catalog.Get(result.Chart.SongID); !ok || !song.Trackable(result.Chart.Difficulty) {
		s.logger.Printf("難易度表記のない譜面のため自己ベストに記録しません: %s\n", result.Chart)
	} else if s.store.Record(result) {
		s.logger.Printf("自己ベストを更新しました: %s\n", result.Chart)
	}
	s.observer.Play(result)
	printResult(s.out, at, result)

	if s.cfg.Output.Session {
		s.appendSession(at, result)
	}
	if s.history != nil {
		if err := s.history.Record(ctx, result); err != nil {
			s.logger.Printf("プレー履歴の保存に失敗しました: %v\n", err)
		}
	}
	if err := s.sink.ReportPlay(ctx, result); err != nil {
		s.logger.Printf("プレー結果の送信に失敗しました: %v\n", err)
	}
}

func (s *Session) appendSession(at time.Time, result models.PlayResult) {
	row := sessionRow(at, result)
	if !s.headerWritten {
		if dir := filepath.Dir(s.sessionFile); dir != "." {
			if err := s.fs.MkdirAll(dir, 0755); err != nil {
				s.logger.Printf("セッションディレクトリを作成できませんでした: %v\n", err)
				return
			}
		}
		row = sessionHeader() + row
	}
	if err := s.fs.AppendFile(s.sessionFile, []byte(row), 0644); err != nil {
		s.logger.Printf("セッションファイルへの書き込みに失敗しました: %v\n", err)
		return
	}
	s.headerWritten = true
}

// writeCurrentSong はプレー中の譜面名を配信用のファイルに書き出します
func (s *Session) writeCurrentSong(ctx context.Context) {
	chart, err := playdata.CurrentChart(ctx, s.reader, s.offsets.CurrentSong)
	if err != nil {
		s.logger.Printf("現在の譜面を読み取れませんでした: %v\n", err)
		return
	}
	song, ok := s.catalog.Get(chart.SongID)
	if !ok {
		s.logger.Printf("現在の譜面が楽曲リストにありません: %s\n", chart)
		return
	}

	title := song.TitleEnglish
	if title == "" {
		title = song.Title
	}
	content := fmt.Sprintf("%s %s", title, chart.Difficulty)
	if err := s.fs.WriteFile(s.cfg.Files.CurrentSong, []byte(content), 0644); err != nil {
		s.logger.Printf("現在の譜面の書き込みに失敗しました: %v\n", err)
	}
}

func (s *Session) writeSongList() {
	var buf bytes.Buffer
	if err := s.catalog.WriteCSV(&buf); err != nil {
		s.logger.Printf("楽曲リストの出力に失敗しました: %v\n", err)
		return
	}
	if err := s.fs.WriteFile(s.cfg.Files.SongList, buf.Bytes(), 0644); err != nil {
		s.logger.Printf("楽曲リストの出力に失敗しました: %v\n", err)
	}
}

// syncCatalog は前回保存した解禁データと比べ、サーバーに未登録の楽曲と、
// 前回の終了後に変わった解禁種別と解禁状態を送ります
func (s *Session) syncCatalog(ctx context.Context) {
	if s.unlocks.Len() == 0 {
		return
	}
	saved, skipped, err := unlock.LoadDump(s.fs, s.cfg.Files.UnlockDB, s.logger)
	if err != nil {
		s.logger.Printf("前回の解禁データを読み込めないため楽曲の同期を行いません: %v\n", err)
		return
	}
	if skipped > 0 {
		s.logger.Printf("前回の解禁データの不正な行を%d件読み飛ばしました\n", skipped)
	}

	plan := s.unlocks.Compare(saved)
	if plan.Empty() {
		return
	}
	fmt.Fprintf(s.out, "楽曲の同期: 新規%d曲, 解禁種別の変化%d曲, 解禁状態の変化%d曲\n",
		len(plan.Added), len(plan.TypeChanges), len(plan.Changes))
	for _, added := range plan.Added {
		if err := s.sink.ReportSong(ctx, added); err != nil {
			s.logger.Printf("楽曲の登録に失敗しました: %v\n", err)
		}
	}
	for _, change := range plan.TypeChanges {
		if err := s.sink.ReportUnlockType(ctx, change); err != nil {
			s.logger.Printf("解禁種別の送信に失敗しました: %v\n", err)
		}
	}
	for _, change := range plan.Changes {
		if err := s.sink.ReportUnlock(ctx, change); err != nil {
			s.logger.Printf("解禁状態の送信に失敗しました: %v\n", err)
		}
	}
}

// backupTracker は読み飛ばした行が上書きで消えないよう、元のトラッカーファイルを .bak に退避します。
// 退避できない場合はこのセッションでは上書きしません
func (s *Session) backupTracker() {
	backup := s.cfg.Files.Tracker + ".bak"
	data, err := s.fs.ReadFile(s.cfg.Files.Tracker)
	if err == nil {
		err = s.fs.WriteFile(backup, data, 0644)
	}
	if err != nil {
		s.logger.Printf("トラッカーファイルを退避できませんでした: %v\n", err)
		s.trackerLocked = true
		return
	}
	fmt.Fprintf(s.out, "元のトラッカーファイルを %s に退避しました\n", backup)
}

// persist は自己ベスト、解禁データ、一覧表を保存します。失敗してもメモリ上の状態はそのまま使い続けます
func (s *Session) persist() {
	if !s.trackerLocked {
		if err := s.store.Save(s.fs, s.cfg.Files.Tracker); err != nil {
			s.logger.Printf("%v\n", err)
		}
	}
	if s.cfg.Remote.Enabled && s.unlocks.Len() > 0 {
		if err := s.unlocks.Save(s.fs, s.cfg.Files.UnlockDB); err != nil {
			s.logger.Printf("%v\n", err)
		}
	}

	var buf bytes.Buffer
	if err := s.store.Export(&buf, s.catalog, s.unlocks, s.customTypes); err != nil {
		s.logger.Printf("%v\n", err)
	} else if err := fileutil.SaveToFileWithBOM(s.fs, s.cfg.Files.TrackerTSV, buf.Bytes()); err != nil {
		s.logger.Printf("一覧表の保存に失敗しました: %v\n", err)
	}
	s.observer.TrackedCharts(s.store.Len())
}

// Catalog は読み込んだ楽曲リストを返します
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Store は自己ベストを返します
func (s *Session) Store() *tracker.Store {
	return s.store
}

// State は現在のゲームの状態を返します
func (s *Session) State() models.GameState {
	if s.machine == nil {
		return models.StateSongSelect
	}
	return s.machine.State()
}
