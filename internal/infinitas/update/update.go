// Package update は補助ファイル (オフセット、補正テーブル、カスタム種別) の新しい版を
// 更新サーバーから取得して置き換えます。置き換える前の版は archive ディレクトリに残します
package update

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shiroemons/go-infitracker/internal/infinitas/config"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
)

// ArchiveDir は置き換える前の版を残すディレクトリ名
const ArchiveDir = "archive"

// versionLayout は補正テーブルとカスタム種別の1行目の日付形式
const versionLayout = "20060102"

// Options はUpdaterの設定
type Options struct {
	Timeout time.Duration
	Logger  interfaces.Logger
	Out     io.Writer
}

// Updater は更新サーバーの補助ファイルと手元の補助ファイルを比べて置き換えます
type Updater struct {
	server string
	fs     interfaces.FileSystem
	client *http.Client
	logger interfaces.Logger
	out    io.Writer
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// New は新しいUpdaterを作成します
func New(server string, fs interfaces.FileSystem, opts Options) *Updater {
	u := &Updater{
		server: strings.TrimRight(server, "/"),
		fs:     fs,
		client: &http.Client{Timeout: opts.Timeout},
		logger: opts.Logger,
		out:    opts.Out,
	}
	if u.logger == nil {
		u.logger = nopLogger{}
	}
	if u.out == nil {
		u.out = io.Discard
	}
	return u
}

// SupportFile は1行目の日付 (yyyyMMdd) を比べ、サーバーの方が新しければ置き換えます。
// 手元にファイルがなければそのまま保存します
func (u *Updater) SupportFile(ctx context.Context, path string) (bool, error) {
	content, err := u.fetch(ctx, filepath.Base(path))
	if err != nil {
		return false, err
	}
	remote, err := parseDate(versionLine(content))
	if err != nil {
		return false, fmt.Errorf("%w: %s (サーバー): %w", ErrVersion, filepath.Base(path), err)
	}

	if !u.fs.FileExists(path) {
		return true, u.install(path, content)
	}
	local, err := u.fs.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrReplace, err)
	}
	current := versionLine(local)
	localDate, err := parseDate(current)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrVersion, path, err)
	}
	if !localDate.Before(remote) {
		return false, nil
	}

	fmt.Fprintf(u.out, "%s の新しい版が見つかりました (%s -> %s)\n", filepath.Base(path), current, versionLine(content))
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return true, u.replace(path, local, fmt.Sprintf("%s_%s.txt", stem, current), content)
}

// Offsets はサーバーのオフセットファイルのビルド番号 (バージョン行の最後の区切り以降) が
// 手元より新しければ置き換えます。内容が解析できないオフセットファイルでは置き換えません
func (u *Updater) Offsets(ctx context.Context, path string) (bool, error) {
	content, err := u.fetch(ctx, filepath.Base(path))
	if err != nil {
		return false, err
	}
	remote, err := config.ParseOffsets(content)
	if err != nil {
		return false, err
	}
	remoteBuild, err := buildNumber(remote.Version)
	if err != nil {
		return false, fmt.Errorf("%w: %s (サーバー): %w", ErrVersion, filepath.Base(path), err)
	}

	if !u.fs.FileExists(path) {
		return true, u.install(path, content)
	}
	local, err := u.fs.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrReplace, err)
	}
	current := versionLine(local)
	if localBuild, err := buildNumber(current); err == nil && localBuild >= remoteBuild {
		return false, nil
	}

	fmt.Fprintf(u.out, "新しいオフセットが見つかりました (%s -> %s)\n", current, remote.Version)
	archived := strings.ReplaceAll(current, ":", "_") + ".txt"
	if current == "" {
		archived = filepath.Base(path)
	}
	return true, u.replace(path, local, archived, content)
}

func (u *Updater) fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.server+"/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %d", ErrFetch, name, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, name, err)
	}
	return body, nil
}

func (u *Updater) install(path string, content []byte) error {
	if err := u.fs.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrReplace, err)
	}
	fmt.Fprintf(u.out, "%s を取得しました\n", filepath.Base(path))
	return nil
}

// replace は元の内容を archive ディレクトリに書き出してから置き換えます
func (u *Updater) replace(path string, old []byte, archived string, content []byte) error {
	dir := filepath.Join(filepath.Dir(path), ArchiveDir)
	if err := u.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrReplace, err)
	}
	if err := u.fs.WriteFile(filepath.Join(dir, archived), old, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrReplace, err)
	}
	if err := u.fs.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrReplace, err)
	}
	u.logger.Printf("%s を置き換えました (旧版: %s)\n", path, archived)
	return nil
}

// versionLine は1行目を返します
func versionLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
}

func parseDate(version string) (time.Time, error) {
	return time.Parse(versionLayout, version)
}

// buildNumber は "P2D:J:B:A:2024052200" の最後の区切り以降を数値として返します
func buildNumber(version string) (int64, error) {
	build := version[strings.LastIndex(version, ":")+1:]
	return strconv.ParseInt(build, 10, 64)
}
