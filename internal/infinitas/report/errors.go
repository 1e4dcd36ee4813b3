package report

import "errors"

var (
	// ErrRequest はリクエストの送信に失敗した場合のエラー
	ErrRequest = errors.New("サーバーへの送信に失敗しました")

	// ErrStatus はサーバーがエラーを返した場合のエラー
	ErrStatus = errors.New("サーバーがエラーを返しました")

	// ErrQueueClosed は停止済みのキューに送ろうとした場合のエラー
	ErrQueueClosed = errors.New("送信キューは停止しています")
)
