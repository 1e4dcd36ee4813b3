package app

import "errors"

var (
	// ErrHook はゲームプロセスへの接続に失敗した場合のエラー
	ErrHook = errors.New("ゲームプロセスに接続できませんでした")

	// ErrLoadTables は補正テーブルの読み込みに失敗した場合のエラー
	ErrLoadTables = errors.New("補正テーブルの読み込みに失敗しました")
)
