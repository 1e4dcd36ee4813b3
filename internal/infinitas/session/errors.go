package session

import "errors"

var (
	// ErrInvalidProbe は準備完了判定の設定が不正な場合のエラー
	ErrInvalidProbe = errors.New("楽曲リストの準備完了判定の設定が不正です")

	// ErrNotStarted は Start の前に Tick が呼ばれた場合のエラー
	ErrNotStarted = errors.New("セッションが開始されていません")
)
