// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は面接レコードの表示テキストをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 面接レコードは本サブシステムの外部で生成されるため、
// 取得したテキストを信頼せず、API応答前に必ずサニタイズする。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizerService interface {
	// Sanitize はテキストからすべてのHTMLタグを除去してプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// 面接のrole・level・questionsはプレーンテキストとして表示されるため、
// タグを一切許可しないStrictPolicyを使用する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストからすべてのHTMLタグを除去して返す。
func (s *textSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
