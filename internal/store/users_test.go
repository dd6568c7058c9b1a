package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/notekeep/internal/models"
)

func newTestUsers(t *testing.T) *Users {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewUsers(rdb)
}

func testUser(id, username, email string) *models.User {
	return &models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
}

func TestUsersCreateAndLookup(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	if err := users.Create(ctx, testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byEmail, err := users.GetByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("lookup by email failed: %v", err)
	}
	if byEmail.ID != "u1" || byEmail.Username != "alice" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	if _, err := users.GetByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	if err := users.Create(ctx, testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := users.Create(ctx, testUser("u2", "alice2", "alice@x.com"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUsersCreateUsernameConflictReleasesEmailIndex(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	if err := users.Create(ctx, testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := users.Create(ctx, testUser("u2", "alice", "alice2@x.com"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// 失敗した登録のメールアドレスは再利用できる
	if err := users.Create(ctx, testUser("u3", "carol", "alice2@x.com")); err != nil {
		t.Fatalf("email must be reusable after failed create: %v", err)
	}
}

func TestUsersUpdateReindexes(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	if err := users.Create(ctx, testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := testUser("u1", "alice-renamed", "alice-new@x.com")
	if err := users.Update(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	byEmail, err := users.GetByEmail(ctx, "alice-new@x.com")
	if err != nil {
		t.Fatalf("lookup by new email failed: %v", err)
	}
	if byEmail.Username != "alice-renamed" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	// 古いメールアドレスでは見つからない
	if _, err := users.GetByEmail(ctx, "alice@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for old email, got %v", err)
	}
}

func TestUsersUpdateUsernameConflictKeepsOldIndexes(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	if err := users.Create(ctx, testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create alice failed: %v", err)
	}
	if err := users.Create(ctx, testUser("u2", "bob", "bob@x.com")); err != nil {
		t.Fatalf("create bob failed: %v", err)
	}

	// メールアドレスとユーザー名を同時に変更し、ユーザー名側が衝突するケース
	updated := testUser("u1", "bob", "alice-new@x.com")
	err := users.Update(ctx, updated)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// 失敗した更新のあとも元のメールアドレスでログインできる
	byEmail, err := users.GetByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("old email lookup broken after failed update: %v", err)
	}
	if byEmail.ID != "u1" || byEmail.Username != "alice" {
		t.Fatalf("unexpected user after failed update: %+v", byEmail)
	}

	// 確保しかけた新しいメールアドレスも解放されている
	if _, err := users.GetByEmail(ctx, "alice-new@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for reserved email, got %v", err)
	}

	// bob側は無傷
	if _, err := users.GetByEmail(ctx, "bob@x.com"); err != nil {
		t.Fatalf("bob lookup failed: %v", err)
	}
}
