package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/memberauth/internal/middleware"
	"github.com/hitoshi/memberauth/internal/model"
)

// ストア側に不正な表示名が紛れ込んでも、ページへはタグなしで埋め込まれる。
func TestMembers_SanitizesDisplayName(t *testing.T) {
	h := NewPageHandler()

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req = req.WithContext(middleware.ContextWithSession(req.Context(), model.SessionState{
		Authenticated: true,
		DisplayName:   `<script>alert("x")</script>taro`,
	}))
	w := httptest.NewRecorder()
	h.Members(w, req)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("script tag must be stripped from output: %s", body)
	}
	if !strings.Contains(body, "taro") {
		t.Errorf("plain text part of the name must survive: %s", body)
	}
}

func TestSignupForm_PostsToSubmitEndpoint(t *testing.T) {
	h := NewPageHandler()

	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	w := httptest.NewRecorder()
	h.SignupForm(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `action="/signup-submit"`) {
		t.Errorf("signup form must post to /signup-submit: %s", body)
	}
	for _, field := range []string{"name", "email", "password"} {
		if !strings.Contains(body, `name="`+field+`"`) {
			t.Errorf("signup form missing %s field", field)
		}
	}
}

func TestLoginForm_PostsToSubmitEndpoint(t *testing.T) {
	h := NewPageHandler()

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	h.LoginForm(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `action="/login-submit"`) {
		t.Errorf("login form must post to /login-submit: %s", body)
	}
	if strings.Contains(body, `name="name"`) {
		t.Error("login form must not ask for the display name")
	}
}
