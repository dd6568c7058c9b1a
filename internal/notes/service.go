// Package notes はユーザーが所有するノートのCRUDを提供します。
// すべての読み書きは所有者のIDで絞り込まれ、他人のノートには届きません。
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/notekeep/internal/apperr"
	"github.com/yourusername/notekeep/internal/models"
	"github.com/yourusername/notekeep/internal/store"
)

// Store はノートレコードの永続化を抽象化します。
// GetOwned と Delete は (noteID, ownerID) の複合一致で動作します。
type Store interface {
	Create(ctx context.Context, note *models.Note) error
	GetOwned(ctx context.Context, noteID, ownerID string) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, noteID, ownerID string) error
}

// Service はノートの業務ロジックをまとめた構造体です。
type Service struct {
	store Store
}

// NewService は Service を作成します。
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List は所有者のノートを作成日時の降順で返します。
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.Note, error) {
	notes, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Get は所有者のノートを1件返します。
// 存在しない、または所有者が異なる場合は store.ErrNotFound を返します。
func (s *Service) Get(ctx context.Context, ownerID, noteID string) (*models.Note, error) {
	return s.store.GetOwned(ctx, noteID, ownerID)
}

// Create は新しいノートを作成します。
func (s *Service) Create(ctx context.Context, ownerID, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, apperr.Validation("Title and content are required.")
	}

	note := &models.Note{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return note, nil
}

// Update はノートのタイトルと本文を更新します。
// (noteID, ownerID) に一致するノートがない場合は何も更新せず、
// エラーも返しません。呼び出し側には成功と同じ流れで見えます。
func (s *Service) Update(ctx context.Context, ownerID, noteID, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, apperr.Validation("Title and content are required.")
	}

	note, err := s.store.GetOwned(ctx, noteID, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up note: %w", err)
	}

	note.Title = title
	note.Content = content
	if err := s.store.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("updating note: %w", err)
	}
	return note, nil
}

// Delete は (noteID, ownerID) に一致するノートを削除します。
// 一致するノートがなくてもエラーにはなりません（冪等）。
func (s *Service) Delete(ctx context.Context, ownerID, noteID string) error {
	if err := s.store.Delete(ctx, noteID, ownerID); err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}
