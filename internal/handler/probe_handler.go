package handler

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/hitoshi/memberauth/internal/model"
	"github.com/hitoshi/memberauth/internal/validate"
)

// UserLookupInterface は名前によるユーザー検索のインターフェース。
type UserLookupInterface interface {
	LookupName(ctx context.Context, name string) (*model.User, error)
}

// ProbeMetrics はインジェクション試行の検出を記録するインターフェース。
type ProbeMetrics interface {
	RecordInjectionAttempt()
}

// ProbeHandler はインジェクション診断エンドポイントのハンドラー。
// 演算子ペイロードを含むクエリがストアに到達しないことを実演する。
type ProbeHandler struct {
	lookup  UserLookupInterface
	metrics ProbeMetrics
	logger  *slog.Logger
}

// NewProbeHandler はProbeHandlerを生成する。
func NewProbeHandler(lookup UserLookupInterface, metrics ProbeMetrics, logger *slog.Logger) *ProbeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProbeHandler{
		lookup:  lookup,
		metrics: metrics,
		logger:  logger,
	}
}

// Probe は user パラメータの検証とユーザー検索を行う。
// GET /nosql-injection?user=NAME
//
// 演算子インジェクション型のペイロード（user[$ne]=x 等）を検出した場合、
// ストアへの問い合わせを一切行わずに拒否し、セキュリティイベントとして記録する。
func (h *ProbeHandler) Probe(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	if validate.DetectInjection(values, "user") {
		if h.metrics != nil {
			h.metrics.RecordInjectionAttempt()
		}
		h.logger.Warn("injection attempt detected",
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("query", r.URL.RawQuery),
		)

		authErr := model.NewInjectionDetectedError()
		writePage(w, http.StatusBadRequest, "不正なリクエスト",
			fmt.Sprintf(`<p>%s</p>
<p>%s</p>`, html.EscapeString(authErr.Message), html.EscapeString(authErr.Action)))
		return
	}

	violations := validate.ProbeSchema().Validate(values)
	if len(violations) > 0 {
		writeValidationErrorPage(w, violations, "/")
		return
	}

	name := values.Get("user")
	user, err := h.lookup.LookupName(r.Context(), name)
	if err != nil {
		h.logger.Error("user lookup failed", slog.String("error", err.Error()))
		writeServerErrorPage(w)
		return
	}

	if user == nil {
		writePage(w, http.StatusOK, "ユーザー検索",
			fmt.Sprintf(`<p>ユーザー %s は見つかりませんでした。</p>`, sanitizeName(name)))
		return
	}

	writePage(w, http.StatusOK, "ユーザー検索",
		fmt.Sprintf(`<p>ユーザー %s は登録済みです。</p>`, sanitizeName(user.Name)))
}
