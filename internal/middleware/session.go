// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/prepman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// userContextKey はリクエストコンテキストに解決済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// SessionResolver はセッション資格情報から現在のユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
// 資格情報の不在・無効・期限切れ・ディレクトリ不整合はすべてnil（匿名）で返る。
type SessionResolver interface {
	CurrentUser(ctx context.Context, credential string) *model.User
}

// CredentialReader はリクエストからセッション資格情報を取り出すインターフェース。
// auth.CookieStoreの部分集合として定義する。Cookie名の知識は
// このミドルウェアではなくストア側に置く。
type CredentialReader interface {
	Read(r *http.Request) (string, bool)
}

// NewSessionMiddleware はcredentialsを通じてセッション資格情報を読み取り、
// 署名・有効期限を検証して現在のユーザーを解決するミドルウェアを返す。
// 解決済みユーザーをリクエストコンテキストに注入する。
// 匿名（未サインイン・期限切れ・アカウント削除済み）のリクエストには
// 一律に401 Unauthorizedを返し、理由は区別しない。
func NewSessionMiddleware(resolver SessionResolver, credentials CredentialReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. ストア経由でセッション資格情報を取得。不在は空文字として扱う
			credential, _ := credentials.Read(r)

			// 2. 資格情報を検証し、ユーザーを解決
			user := resolver.CurrentUser(r.Context(), credential)
			if user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 3. 解決済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, user.ID)
			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// UserFromContext はリクエストコンテキストから解決済みユーザーを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
