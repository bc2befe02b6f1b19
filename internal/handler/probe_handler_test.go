package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/memberauth/internal/model"
)

type mockUserLookup struct {
	lookupFn func(ctx context.Context, name string) (*model.User, error)
	calls    int
}

func (m *mockUserLookup) LookupName(ctx context.Context, name string) (*model.User, error) {
	m.calls++
	if m.lookupFn != nil {
		return m.lookupFn(ctx, name)
	}
	return nil, nil
}

type mockProbeMetrics struct {
	injectionAttempts int
}

func (m *mockProbeMetrics) RecordInjectionAttempt() { m.injectionAttempts++ }

func TestProbe_ExistingUser(t *testing.T) {
	lookup := &mockUserLookup{
		lookupFn: func(ctx context.Context, name string) (*model.User, error) {
			if name != "taro" {
				t.Errorf("lookup name = %q, want taro", name)
			}
			return &model.User{ID: "user-1", Name: "taro"}, nil
		},
	}
	h := NewProbeHandler(lookup, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/nosql-injection?user=taro", nil)
	w := httptest.NewRecorder()
	h.Probe(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "登録済み") {
		t.Errorf("body missing found message: %s", w.Body.String())
	}
}

func TestProbe_UnknownUser(t *testing.T) {
	h := NewProbeHandler(&mockUserLookup{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/nosql-injection?user=nobody", nil)
	w := httptest.NewRecorder()
	h.Probe(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "見つかりませんでした") {
		t.Errorf("body missing not-found message: %s", w.Body.String())
	}
}

// 演算子ペイロードはストアへの問い合わせなしで拒否され、
// セキュリティイベントとして記録される。
func TestProbe_InjectionPayload_RejectedWithoutLookup(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bracketed operator key", "user[%24ne]=x"},
		{"operator in value", "user=%7B%22%24gt%22%3A%22%22%7D"},
		{"bracket characters in value", "user=a%5Bb%5D"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lookup := &mockUserLookup{}
			metrics := &mockProbeMetrics{}
			h := NewProbeHandler(lookup, metrics, nil)

			req := httptest.NewRequest(http.MethodGet, "/nosql-injection?"+test.query, nil)
			w := httptest.NewRecorder()
			h.Probe(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if lookup.calls != 0 {
				t.Error("store must not be queried for injection payloads")
			}
			if metrics.injectionAttempts != 1 {
				t.Errorf("injection metric = %d, want 1", metrics.injectionAttempts)
			}
			if !strings.Contains(w.Body.String(), "インジェクション") {
				t.Errorf("body missing injection message: %s", w.Body.String())
			}
		})
	}
}

// 通常のバリデーションエラーはインジェクション検出とは区別される。
func TestProbe_ValidationFailure_NotCountedAsInjection(t *testing.T) {
	lookup := &mockUserLookup{}
	metrics := &mockProbeMetrics{}
	h := NewProbeHandler(lookup, metrics, nil)

	req := httptest.NewRequest(http.MethodGet, "/nosql-injection?user=", nil)
	w := httptest.NewRecorder()
	h.Probe(w, req)

	if lookup.calls != 0 {
		t.Error("store must not be queried for invalid input")
	}
	if metrics.injectionAttempts != 0 {
		t.Errorf("injection metric = %d, want 0 for ordinary validation failure", metrics.injectionAttempts)
	}
	if !strings.Contains(w.Body.String(), "user は必須です。") {
		t.Errorf("body missing violation message: %s", w.Body.String())
	}
}

func TestProbe_LookupFailure_Returns500(t *testing.T) {
	lookup := &mockUserLookup{
		lookupFn: func(ctx context.Context, name string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	h := NewProbeHandler(lookup, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/nosql-injection?user=taro", nil)
	w := httptest.NewRecorder()
	h.Probe(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Error("internal error details must not leak to the response")
	}
}
