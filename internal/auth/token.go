// Package auth はIDトークンの検証、セッション資格情報の発行・検証、
// サインアップ・サインインのビジネスロジックを提供する。
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultIssuer はセッション資格情報のiss claimに設定する値。
const defaultIssuer = "prepman"

// TokenConfig はセッション資格情報の署名設定。
type TokenConfig struct {
	Secret []byte        // HMAC署名鍵
	TTL    time.Duration // 資格情報の有効期間
	Issuer string        // 省略時はdefaultIssuer
}

// TokenIssuer はセッション資格情報の発行と検証を行う。
// 資格情報はHS256署名付きJWTで、subjectにユーザーIDを埋め込む。
// 発行後はサーバー側に状態を持たず、署名と有効期限のみで検証する。
type TokenIssuer struct {
	config TokenConfig
}

// NewTokenIssuer はTokenIssuerを生成する。
// 署名鍵が空、または有効期間が0以下の場合はエラーを返す。
func NewTokenIssuer(config TokenConfig) (*TokenIssuer, error) {
	if len(config.Secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("session TTL must be positive")
	}
	if config.Issuer == "" {
		config.Issuer = defaultIssuer
	}
	return &TokenIssuer{config: config}, nil
}

// Mint は指定ユーザーIDを埋め込んだセッション資格情報を発行する。
func (t *TokenIssuer) Mint(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    t.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session credential: %w", err)
	}

	return signed, nil
}

// Verify はセッション資格情報の署名と有効期限を検証し、
// 埋め込まれたユーザーIDを返す。
// 署名不一致・期限切れ・形式不正はすべてエラーとなり、部分的な信頼はない。
func (t *TokenIssuer) Verify(credential string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		return t.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session credential: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session credential has no subject")
	}

	return claims.Subject, nil
}
