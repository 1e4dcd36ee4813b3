// Package decoder はゲームのメモリから読み出したバイト列を型付きのレコードに変換します。
//
// レコードはフィールド記述子 (オフセット・幅・解釈) の集合 Layout として宣言し、
// 汎用の Window がそれを解釈します。壊れた・短いバイト列でも panic やエラーにはならず、
// 範囲外のフィールドはゼロ値として扱われます。
package decoder

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Kind はフィールドの解釈方法
type Kind int

const (
	// KindInt32 はリトルエンディアンの符号付き32ビット整数
	KindInt32 Kind = iota
	// KindInt32Array はリトルエンディアン32ビット整数の連続
	KindInt32Array
	// KindBytes は1バイト整数の連続
	KindBytes
	// KindText はNULを除去してShift-JISとして解釈する文字列
	KindText
)

// Field はレコード内の1フィールドの記述子
type Field struct {
	Name   string
	Offset int
	Width  int
	Kind   Kind
}

// End はフィールド終端のオフセットを返します
func (f Field) End() int {
	return f.Offset + f.Width
}

// Layout は固定長レコードのフィールド配置
type Layout struct {
	Name   string
	Size   int
	Fields []Field
}

// Field は名前からフィールド記述子を探します
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate はすべてのフィールドがレコードに収まり、互いに重ならないことを確認します
func (l Layout) Validate() error {
	for i, f := range l.Fields {
		if f.Offset < 0 || f.Width <= 0 || f.End() > l.Size {
			return fmt.Errorf("%s.%s: フィールドがレコード範囲 (%d バイト) を超えています", l.Name, f.Name, l.Size)
		}
		if f.Kind == KindInt32 && f.Width != 4 {
			return fmt.Errorf("%s.%s: 32ビット整数の幅が %d です", l.Name, f.Name, f.Width)
		}
		for _, g := range l.Fields[i+1:] {
			if f.Offset < g.End() && g.Offset < f.End() {
				return fmt.Errorf("%s: フィールド %s と %s が重なっています", l.Name, f.Name, g.Name)
			}
		}
	}
	return nil
}

// Window はメモリから読み出したレコード1件分のバイト列
type Window []byte

// Int32 はフィールドを32ビット整数として読みます
func (w Window) Int32(f Field) int32 {
	return Int32At(w, f.Offset)
}

// Int32s はフィールドを32ビット整数の列として読みます
func (w Window) Int32s(f Field, n int) []int32 {
	out := make([]int32, n)
	for i := 0; i < n && i*4 < f.Width; i++ {
		out[i] = Int32At(w, f.Offset+i*4)
	}
	return out
}

// Bytes はフィールドのバイト列を返します (範囲外の部分は含みません)
func (w Window) Bytes(f Field) []byte {
	return slice(w, f.Offset, f.Width)
}

// Text はフィールドを文字列として読みます
func (w Window) Text(f Field) string {
	return Text(slice(w, f.Offset, f.Width))
}

// Zero はフィールドの先頭 n バイトがすべてゼロかどうかを返します
func (w Window) Zero(f Field, n int) bool {
	for _, b := range slice(w, f.Offset, n) {
		if b != 0 {
			return false
		}
	}
	return true
}

// Int32At は window の offset からリトルエンディアン整数を読みます。
// window が短い場合は読める分だけで組み立てます (不足分はゼロ)。
func Int32At(window []byte, offset int) int32 {
	return int32(Uint32At(window, offset))
}

// Uint32At は Int32At の符号なし版です
func Uint32At(window []byte, offset int) uint32 {
	var v uint32
	for i, b := range slice(window, offset, 4) {
		v |= uint32(b) << (8 * i)
	}
	return v
}

// Text はNULバイトをすべて除去してからShift-JISとしてデコードします
func Text(raw []byte) string {
	filtered := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b != 0 {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), filtered)
	if err != nil {
		return strings.ToValidUTF8(string(filtered), "\uFFFD")
	}
	return string(out)
}

func slice(b []byte, offset, width int) []byte {
	if offset < 0 || width <= 0 || offset >= len(b) {
		return nil
	}
	end := offset + width
	if end > len(b) {
		end = len(b)
	}
	return b[offset:end]
}
