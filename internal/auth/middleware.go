package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/notekeep/internal/models"
	"github.com/yourusername/notekeep/internal/store"
)

const (
	// SessionCookieName はトークンを運ぶクッキーの名前です。
	SessionCookieName = "nk_session"
	// sessionKeyToken はクッキーセッション内でトークンを保持するキーです。
	sessionKeyToken = "session_token"

	// ContextSessionKey は、ハンドラー間でセッションレコードを共有するためのキーです。
	ContextSessionKey = "auth.session"
	// ContextTokenKey は、ハンドラー間でセッショントークンを共有するためのキーです。
	ContextTokenKey = "auth.token"
)

// LoadSession はクッキーのトークンをストアに照合し、見つかったセッションレコードを
// コンテキストに載せるミドルウェアを返します。未ログインでも処理は止めません。
func LoadSession(sessionStore SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromCookie(c)
		if token == "" {
			c.Next()
			return
		}

		record, err := sessionStore.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Printf("session lookup failed: %v", err)
			}
			c.Next()
			return
		}

		c.Set(ContextTokenKey, token)
		c.Set(ContextSessionKey, record)
		c.Next()
	}
}

// RequireAuthenticated は有効なセッションがない場合に 401 を返すミドルウェアです。
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.String(http.StatusUnauthorized, "Access Denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthenticatedWeb は画面向けのゲートで、未ログインなら /login へ
// リダイレクトします。
func RequireAuthenticatedWeb() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin はセッションのロールが admin でない場合に 403 を返すミドルウェアです。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := CurrentSession(c)
		if !ok || !record.IsAdmin() {
			c.String(http.StatusForbidden, "Access Denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOwnerOrAdmin は、セッションのユーザーIDがURLパラメーターの所有者IDと
// 一致するか、ロールが admin の場合のみ通すミドルウェアです。
func RequireOwnerOrAdmin(ownerParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := CurrentSession(c)
		if !ok {
			c.String(http.StatusForbidden, "Access Denied")
			c.Abort()
			return
		}
		if record.IsAdmin() || record.UserID == c.Param(ownerParam) {
			c.Next()
			return
		}
		c.String(http.StatusForbidden, "Access Denied")
		c.Abort()
	}
}

// CurrentSession はコンテキストからセッションレコードを取り出します。
func CurrentSession(c *gin.Context) (*models.SessionRecord, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	record, ok := v.(*models.SessionRecord)
	return record, ok
}

// CurrentToken はコンテキストからセッショントークンを取り出します。
func CurrentToken(c *gin.Context) string {
	v, ok := c.Get(ContextTokenKey)
	if !ok {
		return ""
	}
	token, _ := v.(string)
	return token
}

func tokenFromCookie(c *gin.Context) string {
	session := sessions.Default(c)
	token, _ := session.Get(sessionKeyToken).(string)
	return token
}
