// Package models はストアに永続化されるレコードの型を定義します。
package models

import "time"

// ロール定数。新規登録ユーザーは RoleUser になります。
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User はアカウント情報を保持する構造体です。
// PasswordHash はクライアントへ返すJSONには含めません。
type User struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"passwordHash"`
	Role                string    `json:"role"`
	FailedLoginAttempts int       `json:"failedLoginAttempts"`
	IsLocked            bool      `json:"isLocked"`
	ProfilePicturePath  string    `json:"profilePicturePath,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}
