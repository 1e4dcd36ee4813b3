// Package errors はカスタムエラータイプを提供します
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrUnknownSong は楽曲リストに存在しないIDを参照した場合のエラー
	ErrUnknownSong = errors.New("楽曲リストに存在しない楽曲です")

	// ErrParseFailure は解析に失敗した場合のエラー
	ErrParseFailure = errors.New("データの解析に失敗しました")
)

// ReadError はメモリ読み出し関連のエラー
type ReadError struct {
	Op      string // 実行していた操作
	Address uint64 // 読み出し先アドレス
	Length  uint32 // 読み出しバイト数
	Err     error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ReadError) Error() string {
	return fmt.Sprintf("%s 0x%X (%d バイト): %v", e.Op, e.Address, e.Length, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError は新しいReadErrorを作成します
func NewReadError(op string, address uint64, length uint32, err error) *ReadError {
	return &ReadError{
		Op:      op,
		Address: address,
		Length:  length,
		Err:     err,
	}
}

// ParseError は解析関連のエラー
type ParseError struct {
	File string // ファイル名
	Line int    // 行番号 (1始まり、不明なら0)
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%dの解析エラー: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%sの解析エラー: %v", e.File, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError は新しいParseErrorを作成します
func NewParseError(file string, line int, err error) *ParseError {
	return &ParseError{
		File: file,
		Line: line,
		Err:  err,
	}
}
