// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// AuthError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type AuthError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, security, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeIdentityTaken      = "IDENTITY_TAKEN"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInjectionDetected  = "INJECTION_DETECTED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// ErrInvalidCredentials はログイン失敗を表すセンチネルエラー。
// アカウント列挙を防ぐため、ユーザー不在とパスワード不一致を区別しない。
var ErrInvalidCredentials = errors.New("invalid email and password combination")

// IdentityTakenError はサインアップ時の一意性違反を表す。
// 衝突したフィールド（name または email）を保持する。
type IdentityTakenError struct {
	Field string
}

// Error はerrorインターフェースを実装する。
func (e *IdentityTakenError) Error() string {
	return fmt.Sprintf("%s is already in use", e.Field)
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致で同一のメッセージを返す。
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスとパスワードの組み合わせが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewIdentityTakenError は一意性違反エラーを生成する。
func NewIdentityTakenError(field string) *AuthError {
	return &AuthError{
		Code:     ErrCodeIdentityTaken,
		Message:  fmt.Sprintf("この%sは既に使用されています。", fieldLabel(field)),
		Category: "validation",
		Action:   "別の値を入力してください。",
	}
}

// NewInjectionDetectedError はインジェクション検出エラーを生成する。
// 通常のバリデーションエラーとは区別され、セキュリティイベントとして記録される。
func NewInjectionDetectedError() *AuthError {
	return &AuthError{
		Code:     ErrCodeInjectionDetected,
		Message:  "インジェクション攻撃の可能性を検出しました。",
		Category: "security",
		Action:   "入力値にはプレーンな文字列のみを使用してください。",
	}
}

// fieldLabel はフィールド名の日本語表示名を返す。
func fieldLabel(field string) string {
	switch field {
	case "email":
		return "メールアドレス"
	case "name":
		return "名前"
	default:
		return field
	}
}
