// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// セッションストアの種別。
const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret      string // Cookie署名用シークレット
	SessionStoreSecret string // ストア保存キー保護用シークレット
	SessionMaxAge      time.Duration
	SessionStore       string // postgres | memory

	// Rate Limit（req/min/client）
	RateLimitGeneral int

	// Server
	ServerPort string

	// Cookie
	CookieSecure bool
	CookieDomain string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.SessionStoreSecret = os.Getenv("SESSION_STORE_SECRET")
	if cfg.SessionStoreSecret == "" {
		missing = append(missing, "SESSION_STORE_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// 2つのシークレットは独立していなければ片方の漏洩で両方の防御が崩れる
	if cfg.SessionSecret == cfg.SessionStoreSecret {
		return nil, fmt.Errorf("SESSION_SECRET and SESSION_STORE_SECRET must be distinct")
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = time.Duration(getEnvInt("SESSION_MAX_AGE", 3600)) * time.Second
	cfg.SessionStore = getEnvString("SESSION_STORE", SessionStorePostgres)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "3020")
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", false)
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")

	if cfg.SessionStore != SessionStorePostgres && cfg.SessionStore != SessionStoreMemory {
		return nil, fmt.Errorf("SESSION_STORE must be %q or %q, got %q",
			SessionStorePostgres, SessionStoreMemory, cfg.SessionStore)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
