// Package store はRedisをドキュメントストアとして利用する永続化レイヤーです。
// ユーザー・ノート・セッションをJSONドキュメントとして保存します。
package store

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound は対象のレコードが存在しない場合に返されます。
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate は一意制約（メールアドレス・ユーザー名）に違反した場合に返されます。
	ErrDuplicate = errors.New("store: duplicate key")
)

// Open は接続URLからRedisクライアントを作成します。
func Open(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
