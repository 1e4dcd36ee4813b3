// Package fileutil はファイル操作のユーティリティ関数を提供します
package fileutil

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
)

// utf8BOM はExcelでTSVを開いたときに文字化けさせないための先頭3バイト
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Locator は設定ファイルの検索に使うファイルシステム操作
type Locator interface {
	FileExists(filename string) bool
	Getwd() (string, error)
	Executable() (string, error)
}

// WithBOM は内容の先頭にUTF-8 BOMを付けたバイト列を返します
func WithBOM(content []byte) []byte {
	out := make([]byte, 0, len(utf8BOM)+len(content))
	out = append(out, utf8BOM...)
	return append(out, content...)
}

// SaveToFileWithBOM はUTF-8 BOMありでファイルに保存します
func SaveToFileWithBOM(fs interfaces.FileSystem, outputPath string, content []byte) error {
	// 出力先ディレクトリを作成（存在しない場合）
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrCreateDirectory, err)
		}
	}
	return fs.WriteFile(outputPath, WithBOM(content), 0644)
}

// Locate はカレントディレクトリ、実行ファイルのディレクトリの順にファイルを探します。
// どちらにもなければカレントディレクトリ上のパスを返します
func Locate(fs Locator, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	currentDir, err := fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGetCurrentDirectory, err)
	}
	inCurrent := filepath.Join(currentDir, name)
	if fs.FileExists(inCurrent) {
		return inCurrent, nil
	}

	execPath, err := fs.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGetExecutablePath, err)
	}
	if inExec := filepath.Join(filepath.Dir(execPath), name); fs.FileExists(inExec) {
		return inExec, nil
	}

	return inCurrent, nil
}

// SessionFilename はセッション開始時刻からセッションファイル名を生成します
func SessionFilename(dir string, started time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("Session_%s.tsv", started.Format("2006_01_02_15_04_05")))
}
