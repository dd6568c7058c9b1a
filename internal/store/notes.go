package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/notekeep/internal/models"
)

const (
	noteKeyPrefix  = "note:"
	ownerSetPrefix = "notes:owner:"
)

// Notes はノートレコードを Redis に保存します。
// 所有者ごとに作成日時をスコアとするソート済みセットを持ち、
// 一覧は作成日時の降順で返します。
type Notes struct {
	rdb *redis.Client
}

// NewNotes は Notes を作成します。
func NewNotes(rdb *redis.Client) *Notes {
	return &Notes{rdb: rdb}
}

// Create は新しいノートを保存します。
func (s *Notes) Create(ctx context.Context, note *models.Note) error {
	if note == nil || note.ID == "" || note.UserID == "" {
		return fmt.Errorf("note id and owner are required")
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, noteKey(note.ID), payload, 0)
	pipe.ZAdd(ctx, ownerSetKey(note.UserID), redis.Z{
		Score:  float64(note.CreatedAt.UnixNano()),
		Member: note.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

// GetOwned は (noteID, ownerID) の複合一致でノートを取得します。
// IDが存在しても所有者が異なる場合は ErrNotFound を返します。
func (s *Notes) GetOwned(ctx context.Context, noteID, ownerID string) (*models.Note, error) {
	data, err := s.rdb.Get(ctx, noteKey(noteID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var note models.Note
	if err := json.Unmarshal(data, &note); err != nil {
		return nil, err
	}
	if note.UserID != ownerID {
		return nil, ErrNotFound
	}
	return &note, nil
}

// ListByOwner は所有者のノートを作成日時の降順で返します。
func (s *Notes) ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	ids, err := s.rdb.ZRevRange(ctx, ownerSetKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = noteKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	notes := make([]*models.Note, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// セットに残った削除済みIDはスキップ
			continue
		}
		var note models.Note
		if err := json.Unmarshal([]byte(raw), &note); err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}
	return notes, nil
}

// Update は既存ノートを上書き保存します。
// 所有権の確認は呼び出し側が GetOwned で行う前提です。
func (s *Notes) Update(ctx context.Context, note *models.Note) error {
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, noteKey(note.ID), payload, 0).Err()
}

// Delete は (noteID, ownerID) の複合一致でノートを削除します。
// 一致するノートがない場合は何もせず成功します（冪等）。
func (s *Notes) Delete(ctx context.Context, noteID, ownerID string) error {
	_, err := s.GetOwned(ctx, noteID, ownerID)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, noteKey(noteID))
	pipe.ZRem(ctx, ownerSetKey(ownerID), noteID)
	_, err = pipe.Exec(ctx)
	return err
}

func noteKey(id string) string          { return noteKeyPrefix + id }
func ownerSetKey(ownerID string) string { return ownerSetPrefix + ownerID }
