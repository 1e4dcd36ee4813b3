package unlock

import "errors"

var (
	// ErrSave は解禁データの保存に失敗した場合のエラー
	ErrSave = errors.New("解禁データの保存に失敗しました")

	// ErrLoad は保存済みの解禁データの読み込みに失敗した場合のエラー
	ErrLoad = errors.New("解禁データの読み込みに失敗しました")

	// ErrColumnCount は列数が不正な行の場合のエラー
	ErrColumnCount = errors.New("列数が不正です")
)
