package catalog

import "errors"

var (
	// ErrWriteSongList は楽曲リストの書き出しに失敗した場合のエラー
	ErrWriteSongList = errors.New("楽曲リストの書き出しに失敗しました")

	// ErrNotPopulated は楽曲リストが読み込み途中だった場合のエラー
	ErrNotPopulated = errors.New("楽曲リストが読み込み途中です")
)
