// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"fmt"
	"html"
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/memberauth/internal/middleware"
	"github.com/hitoshi/memberauth/internal/validate"
)

// namePolicy はユーザー由来の文字列をページに埋め込む前のサニタイズポリシー。
// 表示名はHTMLを一切含んではならない。
var namePolicy = bluemonday.StrictPolicy()

// sanitizeName はユーザー由来の表示名をHTML埋め込み用に無害化する。
// タグを除去し、残った特殊文字は実体参照にエスケープされる。
func sanitizeName(name string) string {
	return namePolicy.Sanitize(name)
}

// writePage は最小限のHTMLページを書き込む。
func writePage(w http.ResponseWriter, statusCode int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), body)
}

// writeValidationErrorPage は検証違反の一覧と再入力リンクを表示する。
// ユーザーが訂正可能なエラーであり、通常レスポンス（200）として返す。
func writeValidationErrorPage(w http.ResponseWriter, violations []validate.Violation, backPath string) {
	body := "<ul>\n"
	for _, v := range violations {
		body += "<li>" + html.EscapeString(v.Message()) + "</li>\n"
	}
	body += "</ul>\n"
	body += fmt.Sprintf(`<p><a href="%s">やり直す</a></p>`, backPath)
	writePage(w, http.StatusOK, "入力エラー", body)
}

// writeServerErrorPage は詳細を開示しない汎用の500ページを書き込む。
func writeServerErrorPage(w http.ResponseWriter) {
	writePage(w, http.StatusInternalServerError, "エラー",
		`<p>内部エラーが発生しました。しばらく待ってから再度お試しください。</p>`)
}

// PageHandler は画面表示系のHTTPハンドラー。
type PageHandler struct{}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Landing はランディングページを表示する。
// GET /
// 表示内容はセッション状態によって変わる。
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionFromContext(r.Context())

	if state.Authenticated {
		body := fmt.Sprintf(`<h1>こんにちは、%sさん</h1>
<p><a href="/members">メンバーページ</a></p>
<p><a href="/logout">ログアウト</a></p>`, sanitizeName(state.DisplayName))
		writePage(w, http.StatusOK, "ホーム", body)
		return
	}

	writePage(w, http.StatusOK, "ホーム", `<h1>ようこそ</h1>
<p><a href="/signup">サインアップ</a></p>
<p><a href="/login">ログイン</a></p>`)
}

// SignupForm はサインアップフォームを表示する。
// GET /signup
func (h *PageHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	writePage(w, http.StatusOK, "サインアップ", `<h1>サインアップ</h1>
<form method="POST" action="/signup-submit">
<p>名前: <input name="name" type="text"></p>
<p>メールアドレス: <input name="email" type="email"></p>
<p>パスワード: <input name="password" type="password"></p>
<p><button type="submit">登録</button></p>
</form>`)
}

// LoginForm はログインフォームを表示する。
// GET /login
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	writePage(w, http.StatusOK, "ログイン", `<h1>ログイン</h1>
<form method="POST" action="/login-submit">
<p>メールアドレス: <input name="email" type="email"></p>
<p>パスワード: <input name="password" type="password"></p>
<p><button type="submit">ログイン</button></p>
</form>`)
}

// Members はメンバー専用ページを表示する。
// GET /members
// RequireAuthミドルウェアの内側に配置されるため、ここでは認証済みが保証される。
func (h *PageHandler) Members(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionFromContext(r.Context())

	body := fmt.Sprintf(`<h1>メンバーページ</h1>
<p>%sさん、ようこそ。</p>
<p><a href="/logout">ログアウト</a></p>`, sanitizeName(state.DisplayName))
	writePage(w, http.StatusOK, "メンバーページ", body)
}

// NotFound は未定義ルートの404ページを表示する。
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writePage(w, http.StatusNotFound, "ページが見つかりません",
		`<h1>404</h1><p>ページが見つかりません。</p><p><a href="/">ホームへ戻る</a></p>`)
}
