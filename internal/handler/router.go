package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/prepman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder // nil許容

	// 認証
	AuthService AuthServiceInterface
	Cookies     SessionCookieStore

	// 面接クエリ
	InterviewService InterviewServiceInterface

	// ヘルスチェック
	DB DBPinger

	// メトリクス公開エンドポイント。nilの場合はマウントしない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Logging → CSRF
//
// 認証が必要なルート（/api/*）にはさらに Session → RateLimit(General) が乗る。
// サインイン系（/auth/signin, /auth/signup）はセッション不在で叩かれるため、
// IP単位のレート制限のみを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookies)
	interviewHandler := NewInterviewHandler(deps.InterviewService)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		// サインイン系はIP単位のレート制限
		r.With(deps.RateLimiter.SigninMiddleware()).Post("/signup", authHandler.SignUp)
		r.With(deps.RateLimiter.SigninMiddleware()).Post("/signin", authHandler.SignIn)

		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionResolver, deps.Cookies))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/dashboard", interviewHandler.Dashboard)

		r.Route("/api/interviews", func(r chi.Router) {
			r.Get("/mine", interviewHandler.ListMine)
			r.Get("/discover", interviewHandler.ListDiscover)
		})
	})

	return r
}
