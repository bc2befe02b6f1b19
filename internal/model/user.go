// Package model はドメインモデルを定義する。
package model

import "time"

// User は登録済みユーザーを表す。
// PasswordHashには平文パスワードではなくbcryptダイジェストのみを保持する。
// 登録後の更新・削除フローは存在しない（イミュータブル）。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session は永続化されたセッションレコードを表す。
// IDはブラウザが保持するセッションキーそのものではなく、
// ストア保護シークレットでHMAC化した値（at-rest保護）。
type Session struct {
	ID            string
	DisplayName   string
	Authenticated bool
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// SessionState はハンドラーに渡されるセッションの解決結果を表す。
// 未知のキー・期限切れ・署名不正はすべてAnonymous（ゼロ値）に解決される。
type SessionState struct {
	Key           string
	Authenticated bool
	DisplayName   string
	ExpiresAt     time.Time
}

// Anonymous は未認証状態のSessionStateを返す。
func Anonymous() SessionState {
	return SessionState{}
}
