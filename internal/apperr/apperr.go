// Package apperr はサービス層が返すエラー種別を定義します。
// フォームに表示するメッセージを持つエラーと、内部情報を漏らさない
// 汎用エラーを区別するために使います。
package apperr

import "errors"

// ValidationError は入力不備によるエラーです。ユーザーが修正できるもので、
// メッセージは元のフォームにそのまま表示されます。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation は ValidationError を作成します。
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError は一意制約違反（登録済みメールアドレス等）によるエラーです。
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict は ConflictError を作成します。
func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// UserMessage はエラーからフォームに表示できるメッセージを取り出します。
// 表示できる種別でない場合は ok=false を返し、呼び出し側は汎用メッセージを使います。
func UserMessage(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Message, true
	}
	return "", false
}
