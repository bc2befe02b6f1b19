package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/memberauth/internal/model"
	"github.com/hitoshi/memberauth/internal/repository"
)

// Service はサインアップ・ログインのビジネスロジックを提供する。
// 依存はすべてコンストラクタで注入され、プロセスワイドな状態を持たない。
type Service struct {
	users  repository.UserRepository
	hasher PasswordHasher

	// ユーザー不在時にも照合を1回実行し、応答時間から
	// アカウントの存在を推測されにくくするためのダミーダイジェスト。
	dummyDigest string
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, hasher PasswordHasher) (*Service, error) {
	dummy, err := hasher.Hash("memberauth-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Service{
		users:       users,
		hasher:      hasher,
		dummyDigest: dummy,
	}, nil
}

// Signup は新規ユーザーを登録する。
// 一意性は事前チェックではなくストアの一意インデックスで保証され、
// 衝突時は衝突フィールドを特定したIdentityTakenErrorを返す。
// 入力はハンドラー側でバリデーション済みであることを前提とする。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateName):
			return nil, &model.IdentityTakenError{Field: "name"}
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, &model.IdentityTakenError{Field: "email"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Login はメールアドレスとパスワードでユーザーを認証する。
// ユーザー不在とパスワード不一致はどちらもErrInvalidCredentialsを返し、
// どちらのフィールドが誤っていたかを呼び出し元に開示しない。
// 検索はバインドパラメータによる完全一致（大文字小文字を無視）で行う。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// 存在しないユーザーでも照合コストを支払い、タイミング差を抑える
		s.hasher.Verify(password, s.dummyDigest)
		return nil, model.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.Info("login failed",
			slog.String("user_id", user.ID),
		)
		return nil, model.ErrInvalidCredentials
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// LookupName は診断エンドポイント用に名前でユーザーを検索する。
// 呼び出し前に入力が有界なプレーン文字列として検証済みであること。
func (s *Service) LookupName(ctx context.Context, name string) (*model.User, error) {
	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	return user, nil
}
