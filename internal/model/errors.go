package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeIdentityTokenInvalid = "IDENTITY_TOKEN_INVALID"
	ErrCodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
)

// NewIdentityTokenInvalidError はIDトークン検証失敗エラーを生成する。
// サインインの入力が使用不能な場合に返し、自動リトライは行わない。
func NewIdentityTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeIdentityTokenInvalid,
		Message:  "IDトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "もう一度サインインし直してください。",
	}
}

// NewUserAlreadyExistsError は重複サインアップ時のエラーを生成する。
// 異常系ではなく想定内の結果として扱う。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserAlreadyExists,
		Message:  "このアカウントは既に登録されています。",
		Category: "auth",
		Action:   "サインインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "先にアカウントを作成してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "サインインしてください。",
	}
}

// NewInvalidRequestError はリクエスト不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}
