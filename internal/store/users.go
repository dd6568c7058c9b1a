package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/notekeep/internal/models"
)

const (
	userKeyPrefix     = "user:"
	emailIndexPrefix  = "user:email:"
	usernameIdxPrefix = "user:username:"
)

// Users はユーザーレコードを Redis に保存します。
// メールアドレスとユーザー名は SetNX によるインデックスキーで一意性を保証します。
// 比較は大文字小文字を区別する完全一致です。
type Users struct {
	rdb *redis.Client
}

// NewUsers は Users を作成します。
func NewUsers(rdb *redis.Client) *Users {
	return &Users{rdb: rdb}
}

// Create は新しいユーザーを保存します。
// メールアドレスまたはユーザー名が既に使われている場合は ErrDuplicate を返します。
func (s *Users) Create(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user id is required")
	}

	ok, err := s.rdb.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("indexing email: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}

	ok, err = s.rdb.SetNX(ctx, usernameKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("indexing username: %w", err)
	}
	if !ok {
		// メール側のインデックスを残すと登録不能なアドレスができてしまう
		_ = s.rdb.Del(ctx, emailKey(user.Email)).Err()
		return ErrDuplicate
	}

	return s.write(ctx, user)
}

// GetByID はIDでユーザーを取得します。
func (s *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	data, err := s.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail はメールアドレスでユーザーを取得します。
func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := s.rdb.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Update は既存ユーザーを上書き保存します。
// メールアドレスまたはユーザー名が変わった場合はインデックスを張り替えます。
// 新しいキーの確保がすべて成功してから古いキーを外すため、途中で失敗しても
// 既存のメールアドレス・ユーザー名での検索は壊れません。
// ログイン失敗カウンターの更新もここを通りますが、読み取りと書き込みの間は
// トランザクションで保護していないため、同時ログイン試行では取りこぼしが起こりえます。
func (s *Users) Update(ctx context.Context, user *models.User) error {
	prev, err := s.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	emailChanged := user.Email != prev.Email
	usernameChanged := user.Username != prev.Username

	if emailChanged {
		ok, err := s.rdb.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("indexing email: %w", err)
		}
		if !ok {
			return ErrDuplicate
		}
	}

	if usernameChanged {
		ok, err := s.rdb.SetNX(ctx, usernameKey(user.Username), user.ID, 0).Result()
		if err != nil || !ok {
			if emailChanged {
				_ = s.rdb.Del(ctx, emailKey(user.Email)).Err()
			}
			if err != nil {
				return fmt.Errorf("indexing username: %w", err)
			}
			return ErrDuplicate
		}
	}

	if err := s.write(ctx, user); err != nil {
		if emailChanged {
			_ = s.rdb.Del(ctx, emailKey(user.Email)).Err()
		}
		if usernameChanged {
			_ = s.rdb.Del(ctx, usernameKey(user.Username)).Err()
		}
		return err
	}

	if emailChanged {
		_ = s.rdb.Del(ctx, emailKey(prev.Email)).Err()
	}
	if usernameChanged {
		_ = s.rdb.Del(ctx, usernameKey(prev.Username)).Err()
	}
	return nil
}

func (s *Users) write(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, userKey(user.ID), payload, 0).Err()
}

func userKey(id string) string       { return userKeyPrefix + id }
func emailKey(email string) string   { return emailIndexPrefix + email }
func usernameKey(name string) string { return usernameIdxPrefix + name }
