package tracker

import "errors"

var (
	// ErrLoad はトラッカーファイルの読み込みに失敗した場合のエラー
	ErrLoad = errors.New("トラッカーファイルの読み込みに失敗しました")

	// ErrSave はトラッカーファイルの保存に失敗した場合のエラー
	ErrSave = errors.New("トラッカーファイルの保存に失敗しました")

	// ErrExport はトラッカー表の書き出しに失敗した場合のエラー
	ErrExport = errors.New("トラッカー表の書き出しに失敗しました")

	// ErrColumnCount は列数が足りない行の場合のエラー
	ErrColumnCount = errors.New("列数が不正です")
)
