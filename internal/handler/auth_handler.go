package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/memberauth/internal/model"
	"github.com/hitoshi/memberauth/internal/validate"
)

const sessionCookieName = "session_id"

// AuthServiceInterface は認証サービスのインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
}

// SessionManagerInterface はセッション管理のインターフェース。
type SessionManagerInterface interface {
	Create(ctx context.Context) (string, error)
	Authenticate(ctx context.Context, key, displayName string) error
	Destroy(ctx context.Context, key string) error
	CookieValue(key string) string
	ParseCookieValue(value string) (string, bool)
	TTL() time.Duration
}

// AuthMetrics は認証イベントのメトリクス記録インターフェース。
type AuthMetrics interface {
	RecordSignup()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordLogout()
}

// CookieConfig はセッションCookieの属性設定。
type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthHandler はサインアップ・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionManagerInterface
	metrics  AuthMetrics
	cookie   CookieConfig
	logger   *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions SessionManagerInterface, metrics AuthMetrics, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		metrics:  metrics,
		cookie:   cookie,
		logger:   logger,
	}
}

// SignupSubmit は新規ユーザーを登録し、認証済みセッションを開始する。
// POST /signup-submit
func (h *AuthHandler) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidationErrorPage(w, []validate.Violation{
			{Field: "form", Kind: validate.ViolationMalformed},
		}, "/signup")
		return
	}

	violations := validate.SignupSchema().Validate(r.PostForm)
	if len(violations) > 0 {
		writeValidationErrorPage(w, violations, "/signup")
		return
	}

	name := r.PostForm.Get("name")
	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")

	user, err := h.service.Signup(r.Context(), name, email, password)
	if err != nil {
		var taken *model.IdentityTakenError
		if errors.As(err, &taken) {
			authErr := model.NewIdentityTakenError(taken.Field)
			writePage(w, http.StatusOK, "サインアップ",
				fmt.Sprintf(`<p>%s</p>
<p>%s</p>
<p><a href="/signup">やり直す</a></p>`,
					html.EscapeString(authErr.Message), html.EscapeString(authErr.Action)))
			return
		}
		h.logger.Error("signup failed", slog.String("error", err.Error()))
		writeServerErrorPage(w)
		return
	}

	if !h.startSession(w, r, user.Name) {
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSignup()
	}
	h.logger.Info("user signed up", slog.String("user_id", user.ID))
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

// LoginSubmit は資格情報を検証し、認証済みセッションを開始する。
// POST /login-submit
// 失敗理由（ユーザー不在かパスワード不一致か）はレスポンスで区別しない。
func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidationErrorPage(w, []validate.Violation{
			{Field: "form", Kind: validate.ViolationMalformed},
		}, "/login")
		return
	}

	violations := validate.LoginSchema().Validate(r.PostForm)
	if len(violations) > 0 {
		writeValidationErrorPage(w, violations, "/login")
		return
	}

	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")

	user, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			if h.metrics != nil {
				h.metrics.RecordLoginFailure()
			}
			authErr := model.NewInvalidCredentialsError()
			writePage(w, http.StatusOK, "ログイン",
				fmt.Sprintf(`<p>%s</p>
<p>%s</p>
<p><a href="/login">やり直す</a></p>`,
					html.EscapeString(authErr.Message), html.EscapeString(authErr.Action)))
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		writeServerErrorPage(w)
		return
	}

	// セッション固定化攻撃対策として、既存Cookieの有無に関わらず新しいキーを発行する。
	if !h.startSession(w, r, user.Name) {
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}
	h.logger.Info("user logged in", slog.String("user_id", user.ID))
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

// Logout はセッションを破棄してランディングページへ戻す。
// GET /logout
// セッションが存在しない場合も成功として扱う。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if key, ok := h.sessions.ParseCookieValue(cookie.Value); ok {
			if err := h.sessions.Destroy(r.Context(), key); err != nil {
				// 破棄失敗でもCookieは消す。期限切れ後にストア側の掃除で回収される。
				h.logger.Error("session destroy failed", slog.String("error", err.Error()))
			}
		}
	}

	h.clearSessionCookie(w)
	if h.metrics != nil {
		h.metrics.RecordLogout()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// startSession は新しい認証済みセッションを発行してCookieを設定する。
// 失敗時はエラーページを書き込んでfalseを返す。
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, displayName string) bool {
	key, err := h.sessions.Create(r.Context())
	if err != nil {
		h.logger.Error("session create failed", slog.String("error", err.Error()))
		writeServerErrorPage(w)
		return false
	}
	if err := h.sessions.Authenticate(r.Context(), key, displayName); err != nil {
		h.logger.Error("session authenticate failed", slog.String("error", err.Error()))
		writeServerErrorPage(w)
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    h.sessions.CookieValue(key),
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

// clearSessionCookie はブラウザ側のセッションCookieを無効化する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
