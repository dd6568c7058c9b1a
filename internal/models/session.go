package models

import "time"

// SessionRecord はサーバー側に保存されるセッション情報です。
// ログインユーザーのIDに加えて、画面表示のたびにストアを引かずに済むよう
// ユーザー情報のスナップショットを持ちます。スナップショットは
// プロフィール更新時に更新されます。
type SessionRecord struct {
	UserID             string    `json:"userId"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	ProfilePicturePath string    `json:"profilePicturePath,omitempty"`
	IssuedAt           time.Time `json:"issuedAt"`
}

// IsAdmin はセッションの保有者が管理者かどうかを返します。
func (r *SessionRecord) IsAdmin() bool {
	return r.Role == RoleAdmin
}
