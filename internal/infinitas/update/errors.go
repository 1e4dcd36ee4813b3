package update

import "errors"

var (
	// ErrFetch は更新サーバーからの取得に失敗した場合のエラー
	ErrFetch = errors.New("更新サーバーからの取得に失敗しました")

	// ErrVersion はバージョン行を解釈できない場合のエラー
	ErrVersion = errors.New("バージョン行が不正です")

	// ErrReplace は補助ファイルの置き換えに失敗した場合のエラー
	ErrReplace = errors.New("補助ファイルの置き換えに失敗しました")
)
