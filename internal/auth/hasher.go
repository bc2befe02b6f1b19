// Package auth はパスワードハッシュとサインアップ・ログインのビジネスロジックを提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost はbcryptのワークファクタ。
// ブルートフォース耐性のため意図的に高コストに固定する。
const hashCost = 12

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	// Hash は平文パスワードからソルト付きダイジェストを生成する。
	// 失敗するのは内部エラーのみ。
	Hash(password string) (string, error)
	// Verify は平文とダイジェストを照合する。
	// 不一致・破損したダイジェストはエラーではなくfalseを返す。
	Verify(password, digest string) bool
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
// ダイジェストはコストとソルトを自己記述する形式で保存される。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: hashCost}
}

// Hash は平文パスワードのbcryptダイジェストを生成する。
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードとダイジェストを照合する。
// bcryptの比較は一定時間で行われる。
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
