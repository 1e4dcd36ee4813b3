// Package config はinfitrackerコマンドの設定管理を行います
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const Version = "0.1.0"

// Flags はコマンドライン引数で指定された設定を保持します
type Flags struct {
	ConfigPath  string
	PID         int
	DebugMode   bool
	ShowVersion bool
}

// ParseFlags はコマンドライン引数を解析して設定を返します
func ParseFlags() *Flags {
	flags := &Flags{}

	// カスタムUsage関数を設定（ダブルハイフン表示）
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "  --config string")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tpath to config.yaml (default: search current directory)")
		fmt.Fprintln(flag.CommandLine.Output(), "  -c string")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tpath to config.yaml (shorthand)")
		fmt.Fprintln(flag.CommandLine.Output(), "  --pid int")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tattach to this process id instead of searching by name")
		fmt.Fprintln(flag.CommandLine.Output(), "  -p int")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tattach to this process id (shorthand)")
		fmt.Fprintln(flag.CommandLine.Output(), "  --debug")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tenable debug output")
		fmt.Fprintln(flag.CommandLine.Output(), "  -d\tenable debug output (shorthand)")
		fmt.Fprintln(flag.CommandLine.Output(), "  --version")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tshow version information")
		fmt.Fprintln(flag.CommandLine.Output(), "  -v\tshow version information (shorthand)")
	}

	// 設定ファイル
	flag.StringVar(&flags.ConfigPath, "config", "", "path to config.yaml")
	flag.StringVar(&flags.ConfigPath, "c", "", "path to config.yaml (shorthand)")

	// プロセスID
	flag.IntVar(&flags.PID, "pid", 0, "attach to this process id instead of searching by name")
	flag.IntVar(&flags.PID, "p", 0, "attach to this process id (shorthand)")

	// デバッグモード
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug output")
	flag.BoolVar(&flags.DebugMode, "d", false, "enable debug output (shorthand)")

	// バージョン表示
	flag.BoolVar(&flags.ShowVersion, "version", false, "show version information")
	flag.BoolVar(&flags.ShowVersion, "v", false, "show version information (shorthand)")

	flag.Parse()

	return flags
}

// HandleVersion はバージョン表示を処理します
func HandleVersion(showVersion bool) {
	if showVersion {
		fmt.Printf("infitracker version %s\n", Version)
		os.Exit(0)
	}
}

// DebugLogger はデバッグ出力を管理します。
// ログファイルが設定されている場合はデバッグモードに関係なく時刻付きで書き出します
type DebugLogger struct {
	enabled bool
	file    io.Writer
	now     func() time.Time
	mu      sync.Mutex
}

// NewDebugLogger は新しいDebugLoggerを作成します
func NewDebugLogger(enabled bool) *DebugLogger {
	return &DebugLogger{enabled: enabled, now: time.Now}
}

// WithFile はログファイルの出力先を設定します
func (d *DebugLogger) WithFile(w io.Writer) *DebugLogger {
	d.file = w
	return d
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enabled {
		fmt.Printf(format, a...)
	}
	if d.file != nil {
		fmt.Fprintf(d.file, "%s: ", d.now().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(d.file, format, a...)
	}
}
