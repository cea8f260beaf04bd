package auth

import "net/http"

// SessionCookieName はセッション資格情報を保持するCookieの名前。
const SessionCookieName = "session"

// CookieConfig はセッションCookieの属性設定。
type CookieConfig struct {
	Domain string
	Secure bool // 本番（https）のみtrue
	MaxAge int  // 秒。セッション資格情報のTTLと一致させる
}

// CookieStore はセッション資格情報のCookieチャネルへの読み書きを行う。
// 値の検証は行わない。検証はTokenIssuer側の責務。
type CookieStore struct {
	config CookieConfig
}

// NewCookieStore はCookieStoreを生成する。
func NewCookieStore(config CookieConfig) *CookieStore {
	return &CookieStore{config: config}
}

// Write はセッション資格情報をHTTP Only Cookieとして設定する。
// SameSite=Laxによりクロスサイト送信を抑えつつ、
// トップレベル遷移ではセッションを維持する。
func (s *CookieStore) Write(w http.ResponseWriter, credential string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    credential,
		Path:     "/",
		Domain:   s.config.Domain,
		MaxAge:   s.config.MaxAge,
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read はリクエストからセッション資格情報を取り出す。
// 未設定の場合は空文字列とfalseを返す。未設定は正常系であり、エラーではない。
func (s *CookieStore) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Clear はセッションCookieを削除する（サインアウト）。
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
