package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/prepman/internal/model"
)

const defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// IdentityVerifier は外部IdPが発行した短命のIDトークンを検証するインターフェース。
// トークンの取得フロー（クライアント側のサインイン）は本サブシステムの外部にある。
type IdentityVerifier interface {
	// Verify はIDトークンを検証し、subject・email・nameを返す。
	// 検証できないトークンはエラーを返す。
	Verify(ctx context.Context, idToken string) (*model.IdentityClaims, error)
}

// GoogleIdentityConfig はGoogle IDトークン検証の設定。
type GoogleIdentityConfig struct {
	ClientID string

	// テスト用にオーバーライド可能なURL
	TokenInfoURL string
	Timeout      time.Duration
}

// GoogleIdentityVerifier はGoogleのtokeninfoエンドポイントで
// IDトークンを検証するIdentityVerifier実装。
// 署名検証と有効期限チェックはエンドポイント側が行い、
// ここではaudienceが自分のクライアントIDであることを追加で確認する。
type GoogleIdentityVerifier struct {
	config GoogleIdentityConfig
	client *http.Client
}

// NewGoogleIdentityVerifier はGoogleIdentityVerifierを生成する。
func NewGoogleIdentityVerifier(config GoogleIdentityConfig) *GoogleIdentityVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultGoogleTokenInfoURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &GoogleIdentityVerifier{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// googleTokenInfo はtokeninfoエンドポイントのレスポンス。
type googleTokenInfo struct {
	Sub   string `json:"sub"`
	Aud   string `json:"aud"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify はIDトークンをtokeninfoエンドポイントで検証する。
func (v *GoogleIdentityVerifier) Verify(ctx context.Context, idToken string) (*model.IdentityClaims, error) {
	if idToken == "" {
		return nil, fmt.Errorf("identity token is empty")
	}

	params := url.Values{"id_token": {idToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.config.TokenInfoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	// 無効・期限切れトークンはエンドポイントが4xxで応答する
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity token rejected with status %d: %s", resp.StatusCode, string(body))
	}

	var info googleTokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	if info.Sub == "" {
		return nil, fmt.Errorf("tokeninfo response has no subject")
	}
	if info.Aud != v.config.ClientID {
		return nil, fmt.Errorf("identity token audience mismatch")
	}

	return &model.IdentityClaims{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    info.Name,
	}, nil
}

// compile-time interface check
var _ IdentityVerifier = (*GoogleIdentityVerifier)(nil)
