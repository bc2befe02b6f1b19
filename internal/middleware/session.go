// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/memberauth/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッション状態を格納するためのキー。
var sessionContextKey = contextKey("session_state")

// SessionResolver は署名付きCookie値をセッション状態に解決するインターフェース。
// session.Managerの部分集合として定義する。
type SessionResolver interface {
	ParseCookieValue(value string) (string, bool)
	Check(ctx context.Context, key string) (model.SessionState, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを解決し、
// SessionStateをリクエストコンテキストに注入するミドルウェアを返す。
// Cookie欠落・署名不正・期限切れはすべてAnonymousとして通過させる
// （保護ルートの判定はRequireAuthが行う）。
// ストア障害時のみ500を返し、認証済みとしての処理継続を許さない。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := model.Anonymous()

			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if key, ok := resolver.ParseCookieValue(cookie.Value); ok {
					resolved, err := resolver.Check(r.Context(), key)
					if err != nil {
						slog.Error("failed to resolve session",
							slog.String("error", err.Error()),
						)
						http.Error(w, "internal server error", http.StatusInternalServerError)
						return
					}
					state = resolved
				} else {
					slog.Warn("session cookie signature mismatch",
						slog.String("path", r.URL.Path),
					)
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireAuthMiddleware は認証済みセッションを要求するミドルウェアを返す。
// 未認証リクエストはエラーではなくログインページへリダイレクトする。
func NewRequireAuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := SessionFromContext(r.Context())
			if !state.Authenticated {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッション状態を取得する。
// セッションミドルウェアを通過していない場合はAnonymousを返す。
func SessionFromContext(ctx context.Context) model.SessionState {
	state, ok := ctx.Value(sessionContextKey).(model.SessionState)
	if !ok {
		return model.Anonymous()
	}
	return state
}

// ContextWithSession はコンテキストにセッション状態を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, state model.SessionState) context.Context {
	return context.WithValue(ctx, sessionContextKey, state)
}
