// Package memory は他プロセスのメモリを読み出すための抽象化を提供します。
//
// 本番環境では ProcessReader (Windows のみ) を、テストでは BufferReader を使用します。
//
//	reader, err := memory.OpenProcess(pid)
//	if err != nil {
//	    return err
//	}
//	defer reader.Close()
//	buf, err := reader.Read(0x1431A8000, 1008)
package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied はメモリへのアクセスが拒否された場合のエラー
	ErrAccessDenied = errors.New("メモリへのアクセスが拒否されました")

	// ErrProcessGone は対象プロセスが終了している場合のエラー
	ErrProcessGone = errors.New("対象プロセスは終了しています")

	// ErrUnsupported はこのプラットフォームでプロセスメモリを読めない場合のエラー
	ErrUnsupported = errors.New("このプラットフォームはプロセスメモリの読み出しに対応していません")

	// ErrProcessNotFound は指定された名前のプロセスが見つからない場合のエラー
	ErrProcessNotFound = errors.New("プロセスが見つかりません")
)

// Reader はメモリ読み出しのインターフェース
type Reader interface {
	// Read は address から length バイトを読み出します。
	// 読み出しはブロッキングで、プロセス終了やアクセス拒否の場合はエラーを返します。
	Read(address uint64, length uint32) ([]byte, error)
}

// ReadCall は BufferReader に対する1回の読み出し要求を記録します
type ReadCall struct {
	Address uint64
	Length  uint32
}

// BufferReader はバイト列をメモリ空間に見立てた Reader の実装です。
// Base を先頭アドレスとし、範囲外の読み出しはゼロで埋めて返します。
type BufferReader struct {
	Base  uint64
	Data  []byte
	Error error
	Calls []ReadCall
}

// NewBufferReader は新しいBufferReaderを作成します
func NewBufferReader(base uint64, size int) *BufferReader {
	return &BufferReader{
		Base: base,
		Data: make([]byte, size),
	}
}

// Read は記録済みのバイト列からコピーを返します
func (b *BufferReader) Read(address uint64, length uint32) ([]byte, error) {
	b.Calls = append(b.Calls, ReadCall{Address: address, Length: length})
	if b.Error != nil {
		return nil, b.Error
	}

	out := make([]byte, length)
	if address < b.Base {
		return out, nil
	}
	start := address - b.Base
	if start >= uint64(len(b.Data)) {
		return out, nil
	}
	copy(out, b.Data[start:])
	return out, nil
}

// Write はアドレス address にバイト列を書き込みます (テストデータ作成用)
func (b *BufferReader) Write(address uint64, p []byte) error {
	if address < b.Base {
		return fmt.Errorf("アドレス 0x%X はバッファの範囲外です", address)
	}
	start := address - b.Base
	end := start + uint64(len(p))
	if end > uint64(len(b.Data)) {
		grown := make([]byte, end)
		copy(grown, b.Data)
		b.Data = grown
	}
	copy(b.Data[start:end], p)
	return nil
}

// CallsAt は指定アドレスへの読み出し要求だけを返します
func (b *BufferReader) CallsAt(address uint64) []ReadCall {
	var calls []ReadCall
	for _, c := range b.Calls {
		if c.Address == address {
			calls = append(calls, c)
		}
	}
	return calls
}
