// Package auth は登録・ログイン・プロフィール更新とセッション管理を提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/notekeep/internal/apperr"
	"github.com/yourusername/notekeep/internal/models"
	"github.com/yourusername/notekeep/internal/store"
)

// 連続ログイン失敗がこの回数に達するとアカウントをロックします。
const maxFailedLogins = 5

const minPasswordLength = 6

var (
	// ErrInvalidCredentials はメールアドレス不明・パスワード不一致のどちらでも
	// 返される共通のエラーです。アカウントの存在を推測されないよう区別しません。
	ErrInvalidCredentials = errors.New("Invalid email or password.")
	// ErrAccountLocked はロック済みアカウントへのログイン試行に返されます。
	ErrAccountLocked = errors.New("Account is locked due to multiple failed login attempts.")
)

// UserStore はユーザーレコードの永続化を抽象化します。
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// SessionStore はトークンからセッションレコードを引くキーバリューストアです。
type SessionStore interface {
	Get(ctx context.Context, token string) (*models.SessionRecord, error)
	Set(ctx context.Context, token string, record *models.SessionRecord) error
	Delete(ctx context.Context, token string) error
}

// Service は認証まわりの業務ロジックをまとめた構造体です。
type Service struct {
	users      UserStore
	sessions   SessionStore
	bcryptCost int
}

// NewService は Service を作成します。
func NewService(users UserStore, sessions SessionStore, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = 10
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
}

// RegisterInput は登録フォームの入力です。
// ProfilePicturePath はアップロード済み画像の公開パスで、未指定なら空文字です。
type RegisterInput struct {
	Username           string
	Email              string
	Password           string
	ConfirmPassword    string
	ProfilePicturePath string
}

// Register は新規ユーザーを作成します。自動ログインはしません。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, apperr.Validation("Please fill in all fields.")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation("Passwords do not match.")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 6 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:                  uuid.NewString(),
		Username:            in.Username,
		Email:               in.Email,
		PasswordHash:        string(hash),
		Role:                models.RoleUser,
		FailedLoginAttempts: 0,
		IsLocked:            false,
		ProfilePicturePath:  in.ProfilePicturePath,
		CreatedAt:           time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already registered.")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login は資格情報を検証し、成功時に新しいセッションを発行します。
// ロック状態の確認はパスワード検証より先に行います。
// パスワード不一致は失敗カウンターを増やし、maxFailedLogins に達した時点で
// アカウントをロックします。成功時はカウンターとロックをリセットします。
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.SessionRecord, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.IsLocked {
		return "", nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.IsLocked = true
		}
		if err := s.users.Update(ctx, user); err != nil {
			return "", nil, fmt.Errorf("recording failed attempt: %w", err)
		}
		return "", nil, ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.IsLocked = false
	if err := s.users.Update(ctx, user); err != nil {
		return "", nil, fmt.Errorf("resetting failed attempts: %w", err)
	}

	token := uuid.NewString()
	record := &models.SessionRecord{
		UserID:             user.ID,
		Username:           user.Username,
		Email:              user.Email,
		Role:               user.Role,
		ProfilePicturePath: user.ProfilePicturePath,
		IssuedAt:           time.Now(),
	}
	if err := s.sessions.Set(ctx, token, record); err != nil {
		return "", nil, fmt.Errorf("saving session: %w", err)
	}
	return token, record, nil
}

// UpdateProfile はユーザー名・メールアドレス・プロフィール画像を更新します。
// newPicturePath が空の場合、画像は既存のまま保持されます。
// 成功時は同じトークンのセッションスナップショットも更新します。
func (s *Service) UpdateProfile(ctx context.Context, token, userID, username, email, newPicturePath string) (*models.User, error) {
	if username == "" || email == "" {
		return nil, apperr.Validation("All fields are required.")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	user.Username = username
	user.Email = email
	if newPicturePath != "" {
		user.ProfilePicturePath = newPicturePath
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Email or username is already taken.")
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	record, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user, nil
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	record.Username = user.Username
	record.Email = user.Email
	record.ProfilePicturePath = user.ProfilePicturePath
	if err := s.sessions.Set(ctx, token, record); err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}

	return user, nil
}

// Profile はIDでユーザーを取得します。
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

// Logout はセッションを破棄します。既に破棄済みでもエラーにはなりません。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
