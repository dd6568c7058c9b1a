package models

import "time"

// Note はユーザーが所有するノートです。
// 読み書きは常に所有者のIDで絞り込まれます。
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
