// Package session はサーバーサイドセッションの発行・認証・検証・破棄を提供する。
//
// ブラウザにはHMAC署名付きの不透明なセッションキーのみを渡し、
// 認可状態はすべてストア側に保持する。ストアに保存するIDは
// キーそのものではなく別シークレットでHMAC化した値であり、
// ストア漏洩時にも有効なセッションキーが復元できない。
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/memberauth/internal/model"
	"github.com/hitoshi/memberauth/internal/repository"
)

// Manager はセッションのライフサイクル
// （Anonymous → Authenticated → Expired|LoggedOut）を管理する唯一の変更主体。
type Manager struct {
	repo         repository.SessionRepository
	ttl          time.Duration
	cookieSecret []byte
	storeSecret  []byte
}

// NewManager はManagerを生成する。
// cookieSecretはCookie署名用、storeSecretはストア保存時のキー保護用で、
// 互いに独立したシークレットを使用する。
func NewManager(repo repository.SessionRepository, ttl time.Duration, cookieSecret, storeSecret string) *Manager {
	return &Manager{
		repo:         repo,
		ttl:          ttl,
		cookieSecret: []byte(cookieSecret),
		storeSecret:  []byte(storeSecret),
	}
}

// TTL はセッションの有効期間を返す。Cookie MaxAgeの設定に使用する。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create は新しいセッションキーを発行し、未認証状態のレコードを保存する。
func (m *Manager) Create(ctx context.Context) (string, error) {
	key, err := generateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:            m.storeID(key),
		Authenticated: false,
		ExpiresAt:     now.Add(m.ttl),
		CreatedAt:     now,
	}

	if err := m.repo.Save(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return key, nil
}

// Authenticate はセッションをAuthenticated状態に遷移させる。
// 表示名を紐付け、有効期限を now + TTL にリセットする。
func (m *Manager) Authenticate(ctx context.Context, key, displayName string) error {
	if key == "" {
		return fmt.Errorf("session key is required")
	}

	now := time.Now()
	session := &model.Session{
		ID:            m.storeID(key),
		DisplayName:   displayName,
		Authenticated: true,
		ExpiresAt:     now.Add(m.ttl),
		CreatedAt:     now,
	}

	if err := m.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to authenticate session: %w", err)
	}

	return nil
}

// Check はセッションキーを状態に解決する。
// 未知のキー・期限切れはAnonymousを返す。有効期限はストアの判定に加えて
// ここでも検査し、期限を過ぎた認証フラグを決して信用しない。
// エラーはストア障害時のみ返す。
func (m *Manager) Check(ctx context.Context, key string) (model.SessionState, error) {
	if key == "" {
		return model.Anonymous(), nil
	}

	session, err := m.repo.FindByID(ctx, m.storeID(key))
	if err != nil {
		return model.Anonymous(), fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil || !session.ExpiresAt.After(time.Now()) {
		return model.Anonymous(), nil
	}

	return model.SessionState{
		Key:           key,
		Authenticated: session.Authenticated,
		DisplayName:   session.DisplayName,
		ExpiresAt:     session.ExpiresAt,
	}, nil
}

// Destroy はセッションの全状態を削除する。
// 存在しないキーに対しても冪等に成功し、以後のCheckはAnonymousを返す。
func (m *Manager) Destroy(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := m.repo.DeleteByID(ctx, m.storeID(key)); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// CookieValue はセッションキーの署名付きCookie値（key.signature）を生成する。
func (m *Manager) CookieValue(key string) string {
	return key + "." + m.sign(key)
}

// ParseCookieValue は署名付きCookie値を検証してセッションキーを取り出す。
// 署名が一致しない場合はfalseを返す（改竄されたCookieはAnonymous扱い）。
func (m *Manager) ParseCookieValue(value string) (string, bool) {
	key, sig, found := strings.Cut(value, ".")
	if !found || key == "" {
		return "", false
	}
	if !hmac.Equal([]byte(m.sign(key)), []byte(sig)) {
		return "", false
	}
	return key, true
}

// sign はCookie署名シークレットによるキーのHMAC-SHA256を返す。
func (m *Manager) sign(key string) string {
	mac := hmac.New(sha256.New, m.cookieSecret)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// storeID はストア保存用のセッションIDを導出する。
func (m *Manager) storeID(key string) string {
	mac := hmac.New(sha256.New, m.storeSecret)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// generateKey は暗号的に安全なセッションキーを生成する。
func generateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
