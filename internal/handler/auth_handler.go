// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/prepman/internal/auth"
	"github.com/hitoshi/prepman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// SignUp はユーザーディレクトリにレコードを冪等に作成する。
	SignUp(ctx context.Context, uid, name, email string) (auth.SignUpResult, error)
	// SignIn はIDトークンを検証し、セッション資格情報と解決済みユーザーを返す。
	SignIn(ctx context.Context, idToken string) (string, *model.User, error)
	// CurrentUser はセッション資格情報から現在のユーザーを解決する。匿名はnil。
	CurrentUser(ctx context.Context, credential string) *model.User
}

// SessionCookieStore はセッション資格情報のCookieチャネルへの読み書きインターフェース。
// auth.CookieStoreの部分集合として定義する。
type SessionCookieStore interface {
	Write(w http.ResponseWriter, credential string)
	Read(r *http.Request) (string, bool)
	Clear(w http.ResponseWriter)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookies SessionCookieStore
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookies SessionCookieStore) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
	}
}

// signUpRequest はサインアップリクエストのボディ。
type signUpRequest struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// signInRequest はサインインリクエストのボディ。
type signInRequest struct {
	IDToken string `json:"id_token"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignUp はユーザーディレクトリへの冪等な登録を処理する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	result, err := h.service.SignUp(r.Context(), req.UID, req.Name, req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if result == auth.SignUpAlreadyExists {
		writeAPIErrorResponse(w, http.StatusConflict, model.NewUserAlreadyExistsError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"id": req.UID,
	})
}

// SignIn はIDトークンを検証し、セッション資格情報をCookieとして設定する。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}
	if req.IDToken == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("id_tokenが空です"))
		return
	}

	credential, user, err := h.service.SignIn(r.Context(), req.IDToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.cookies.Write(w, credential)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Logout はセッションCookieを破棄する。
// 資格情報はステートレスなためサーバー側の無効化は行わない。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッションに対応するユーザー情報を返す。
// 匿名（Cookie不在・無効・期限切れ・レコード削除済み）は一律401。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	credential, _ := h.cookies.Read(r)

	user := h.service.CurrentUser(r.Context(), credential)
	if user == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}
