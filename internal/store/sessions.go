package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/notekeep/internal/models"
)

const sessionKeyPrefix = "session:"

// Sessions はセッションレコードを Redis に保存します。
// トークンからレコードを引く単純なキーバリューインターフェースで、
// 有効期限は Redis の TTL に任せます。
type Sessions struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessions は Sessions を作成します。
func NewSessions(rdb *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{rdb: rdb, ttl: ttl}
}

// Get はトークンに対応するセッションレコードを取得します。
// 存在しない（または期限切れで消えた）場合は ErrNotFound を返します。
func (s *Sessions) Get(ctx context.Context, token string) (*models.SessionRecord, error) {
	data, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var record models.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Set はセッションレコードを保存します（存在する場合は上書き）。
func (s *Sessions) Set(ctx context.Context, token string, record *models.SessionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(token), payload, s.ttl).Err()
}

// Delete はセッションレコードを削除します。
// 存在しないトークンの削除はエラーになりません（ログアウトの冪等性）。
func (s *Sessions) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string { return sessionKeyPrefix + token }
