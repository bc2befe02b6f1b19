package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/memberauth/internal/metrics"
	"github.com/hitoshi/memberauth/internal/middleware"
)

// RouterDeps はルーター構築に必要な依存をまとめる。
type RouterDeps struct {
	AuthService AuthServiceInterface
	UserLookup  UserLookupInterface
	Sessions    SessionManagerInterface
	Resolver    middleware.SessionResolver
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Cookie      CookieConfig
	HealthCheck func(ctx context.Context) error
	Logger      *slog.Logger
}

// NewRouter はアプリケーション全体のHTTPルーターを構築する。
//
// ミドルウェアの適用順:
//
//	Recovery → SecurityHeaders → Session → Logging → RateLimit
//
// SessionはLoggingより先に解決し、アクセスログに表示名を含められるようにする。
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// *metrics.Collectorのnilをインターフェースに入れると
	// nil判定をすり抜けるため、非nilの場合のみ代入する。
	var authMetrics AuthMetrics
	var probeMetrics ProbeMetrics
	var httpRecorder middleware.HTTPRecorder
	if deps.Metrics != nil {
		authMetrics = deps.Metrics
		probeMetrics = deps.Metrics
		httpRecorder = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Sessions, authMetrics, deps.Cookie, logger)
	probeHandler := NewProbeHandler(deps.UserLookup, probeMetrics, logger)
	pageHandler := NewPageHandler()

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewSessionMiddleware(deps.Resolver))
	r.Use(middleware.NewLoggingMiddleware(logger, httpRecorder))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware())
	}

	r.Get("/", pageHandler.Landing)
	r.Get("/signup", pageHandler.SignupForm)
	r.Get("/login", pageHandler.LoginForm)
	r.Post("/signup-submit", authHandler.SignupSubmit)
	r.Post("/login-submit", authHandler.LoginSubmit)
	r.Get("/logout", authHandler.Logout)
	r.Get("/nosql-injection", probeHandler.Probe)

	// 認証必須ルート
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequireAuthMiddleware())
		r.Get("/members", pageHandler.Members)
	})

	r.Get("/health", newHealthHandler(deps.HealthCheck))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.NotFound(pageHandler.NotFound)

	return r
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// ストア接続まで確認し、監視系とhealthcheckサブコマンドの両方から使用される。
func newHealthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
