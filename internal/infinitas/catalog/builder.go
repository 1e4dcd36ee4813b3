package catalog

import (
	"context"
	"strings"

	"github.com/shiroemons/go-infitracker/internal/infinitas/decoder"
	apperrors "github.com/shiroemons/go-infitracker/internal/infinitas/errors"
	"github.com/shiroemons/go-infitracker/internal/infinitas/interfaces"
	"github.com/shiroemons/go-infitracker/pkg/memory"
)

// DefaultMaxEntries は楽曲リストを読み進める上限。
// 終端が見つからないまま不正なメモリを読み続けないようにします
const DefaultMaxEntries = 10000

// Marker は楽曲リストと解禁データの先頭に置かれている既知の値
type Marker struct {
	Title         string
	FirstUnlockID int32
}

// DefaultMarker は先頭の楽曲 "5.1.1." (ID 1000) です
var DefaultMarker = Marker{Title: "5.1.1.", FirstUnlockID: 1000}

// BuilderOptions はBuilderの設定
type BuilderOptions struct {
	// Corrections は文字化け補正表 (タイトル・アーティスト名の完全一致で置き換え)
	Corrections map[string]string
	MaxEntries  int
	Logger      interfaces.Logger
}

// Builder はメモリから楽曲リストを組み立てます
type Builder struct {
	reader      memory.Reader
	base        uint64
	corrections map[string]string
	maxEntries  int
	logger      interfaces.Logger
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NewBuilder は新しいBuilderを作成します
func NewBuilder(reader memory.Reader, base uint64, opts BuilderOptions) *Builder {
	b := &Builder{
		reader:      reader,
		base:        base,
		corrections: opts.Corrections,
		maxEntries:  opts.MaxEntries,
		logger:      opts.Logger,
	}
	if b.maxEntries <= 0 {
		b.maxEntries = DefaultMaxEntries
	}
	if b.logger == nil {
		b.logger = nopLogger{}
	}
	return b
}

// Build は楽曲リストを先頭から終端 (空きスロット) まで読み込みます。
// 読み出しに失敗した場合は途中までの結果を捨ててエラーを返します
func (b *Builder) Build(ctx context.Context) (*Catalog, error) {
	b.logger.Printf("楽曲リストを読み込んでいます\n")
	catalog := New()

	for n := 0; n < b.maxEntries; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		address := b.base + uint64(n)*decoder.SongStride
		buf, err := b.reader.Read(address, decoder.SongStride)
		if err != nil {
			return nil, apperrors.NewReadError("楽曲リストの読み出し", address, decoder.SongStride, err)
		}

		song, ok := decoder.DecodeCatalogEntry(buf)
		if !ok {
			b.logger.Printf("楽曲リストを読み込みました: %d曲\n", catalog.Len())
			return catalog, nil
		}

		song.Title = b.correct(song.Title)
		song.Artist = b.correct(song.Artist)

		if !catalog.Add(song) {
			b.logger.Printf("重複した楽曲IDを無視しました: %s %s\n", song.ID, song.Title)
		}
	}

	b.logger.Printf("楽曲リストの終端が見つかりませんでした (%d件で打ち切り)\n", b.maxEntries)
	return catalog, nil
}

func (b *Builder) correct(s string) string {
	if fixed, ok := b.corrections[s]; ok {
		b.logger.Printf("文字化けを補正しました: %q -> %q\n", s, fixed)
		return fixed
	}
	return s
}

// Available は楽曲リストと解禁データの先頭が既知の値になっているかを確認します。
// ゲーム起動直後はどちらもまだ書き込まれていません
func (b *Builder) Available(ctx context.Context, unlockBase uint64, m Marker) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	titleField, _ := decoder.SongLayout.Field("title")
	buf, err := b.reader.Read(b.base, uint32(titleField.Width))
	if err != nil {
		return false, apperrors.NewReadError("楽曲リスト先頭の読み出し", b.base, uint32(titleField.Width), err)
	}
	title := decoder.Text(buf)

	idBuf, err := b.reader.Read(unlockBase, 4)
	if err != nil {
		return false, apperrors.NewReadError("解禁データ先頭の読み出し", unlockBase, 4, err)
	}
	id := decoder.Int32At(idBuf, 0)

	b.logger.Printf("楽曲リスト先頭: %q (期待値 %q), 解禁データ先頭: %d (期待値 %d)\n", title, m.Title, id, m.FirstUnlockID)
	return strings.Contains(title, m.Title) && id == m.FirstUnlockID, nil
}
