// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/memberauth/internal/model"
)

// ErrDuplicateName / ErrDuplicateEmail は一意制約違反を表すセンチネルエラー。
// 事前チェックではなく、ストア側の一意インデックス違反からマップされる。
// （チェックとINSERTの間のレースはインデックスで構造的に防ぐ）
var (
	ErrDuplicateName  = errors.New("name is already taken")
	ErrDuplicateEmail = errors.New("email is already taken")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// 大文字小文字を無視した一意性違反はErrDuplicateName / ErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByEmail はメールアドレス（大文字小文字を無視）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByName は名前（大文字小文字を無視）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// 実装はPostgres永続化（本番既定）とプロセス内メモリの2種類がある。
type SessionRepository interface {
	// Save はセッションを作成または上書きする（UPSERT）。
	Save(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。
	// 期限切れ・未知のIDの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しないIDでもエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
