package config

import "errors"

var (
	// ErrLoadConfig は設定ファイルの読み込みに失敗した場合のエラー
	ErrLoadConfig = errors.New("設定ファイルの読み込みに失敗しました")

	// ErrDecodeConfig は設定値の変換に失敗した場合のエラー
	ErrDecodeConfig = errors.New("設定値の変換に失敗しました")

	// ErrLoadOffsets はオフセットファイルの読み込みに失敗した場合のエラー
	ErrLoadOffsets = errors.New("オフセットファイルの読み込みに失敗しました")

	// ErrInvalidOffset はオフセット値が16進数として解釈できない場合のエラー
	ErrInvalidOffset = errors.New("オフセット値が不正です")

	// ErrMissingOffset は必須のオフセットが定義されていない場合のエラー
	ErrMissingOffset = errors.New("必須のオフセットが定義されていません")
)
