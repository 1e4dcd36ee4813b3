// Package catalog はゲームのメモリ上にある楽曲リストを読み込みます
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

// Probe は楽曲リストが読み込み済みかどうかを確認するための譜面
type Probe struct {
	SongID     string
	Difficulty models.Difficulty
	MinNotes   int
}

// DefaultProbe は Clione (Ryu* Remix) SPA のノーツ数で確認します。
// 読み込み途中のメモリでは 0〜3 程度の値が入っています
var DefaultProbe = Probe{SongID: "80003", Difficulty: models.SPA, MinNotes: 10}

// Catalog は楽曲IDをキーとした楽曲リスト
type Catalog struct {
	songs map[string]*models.SongInfo
}

// New は空のCatalogを作成します
func New() *Catalog {
	return &Catalog{songs: make(map[string]*models.SongInfo)}
}

// Add は楽曲を追加します。同じIDが既にあれば追加せず false を返します
func (c *Catalog) Add(song *models.SongInfo) bool {
	if _, exists := c.songs[song.ID]; exists {
		return false
	}
	c.songs[song.ID] = song
	return true
}

// Get は楽曲IDから楽曲を取得します
func (c *Catalog) Get(id string) (*models.SongInfo, bool) {
	song, ok := c.songs[id]
	return song, ok
}

// Len は楽曲数を返します
func (c *Catalog) Len() int {
	return len(c.songs)
}

// IDs は楽曲IDを昇順で返します
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.songs))
	for id := range c.songs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Songs は楽曲をID順で返します
func (c *Catalog) Songs() []*models.SongInfo {
	songs := make([]*models.SongInfo, 0, len(c.songs))
	for _, id := range c.IDs() {
		songs = append(songs, c.songs[id])
	}
	return songs
}

// Populated は確認用の譜面のノーツ数から、楽曲リストが全て読み込まれているかを判定します
func (c *Catalog) Populated(p Probe) bool {
	song, ok := c.songs[p.SongID]
	if !ok || !p.Difficulty.Valid() {
		return false
	}
	return song.TotalNotes[p.Difficulty] >= p.MinNotes
}

// CheckPopulated は読み込み途中であれば確認用の譜面の状態を添えた ErrNotPopulated を返します
func (c *Catalog) CheckPopulated(p Probe) error {
	if c.Populated(p) {
		return nil
	}
	song, ok := c.songs[p.SongID]
	if !ok || !p.Difficulty.Valid() {
		return fmt.Errorf("%w: %s %s が見つかりません", ErrNotPopulated, p.SongID, p.Difficulty)
	}
	return fmt.Errorf("%w: %s %s のノーツ数 %d (必要数 %d)", ErrNotPopulated, p.SongID, p.Difficulty, song.TotalNotes[p.Difficulty], p.MinNotes)
}

// WriteCSV は楽曲リストを id,title,title2,artist,genre の形式で書き出します
func (c *Catalog) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "title2", "artist", "genre"}); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSongList, err)
	}
	for _, song := range c.Songs() {
		if err := cw.Write([]string{song.ID, song.Title, song.TitleEnglish, song.Artist, song.Genre}); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSongList, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSongList, err)
	}
	return nil
}
