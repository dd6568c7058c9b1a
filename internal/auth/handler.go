package auth

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/notekeep/internal/apperr"
	"github.com/yourusername/notekeep/internal/upload"
)

// genericErrorMessage はストア障害などの内部エラーをユーザーに見せるときの
// 汎用メッセージです。内部の詳細はログにのみ出します。
const genericErrorMessage = "Something went wrong. Please try again."

// PictureSaver はプロフィール画像の保存を抽象化します。
type PictureSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// Handler は認証まわりのHTTPハンドラーをまとめた構造体です。
type Handler struct {
	svc   *Service
	saver PictureSaver
}

// NewHandler は Handler を作成します。
func NewHandler(svc *Service, saver PictureSaver) *Handler {
	return &Handler{svc: svc, saver: saver}
}

// ShowHome は / のハンドラーです。ログイン中ならユーザー情報を渡して描画します。
func (h *Handler) ShowHome(c *gin.Context) {
	record, _ := CurrentSession(c)
	c.HTML(http.StatusOK, "index.html", gin.H{"User": record})
}

// ShowRegister は GET /register のハンドラーです。
func (h *Handler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Error": nil})
}

// Register は POST /register のハンドラーです。
// 成功するとログイン画面へリダイレクトします（自動ログインはしません）。
func (h *Handler) Register(c *gin.Context) {
	picturePath, ok := h.savePicture(c, "register.html", gin.H{"Error": nil})
	if !ok {
		return
	}

	in := RegisterInput{
		Username:           c.PostForm("username"),
		Email:              c.PostForm("email"),
		Password:           c.PostForm("password"),
		ConfirmPassword:    c.PostForm("confirmPassword"),
		ProfilePicturePath: picturePath,
	}
	if _, err := h.svc.Register(c.Request.Context(), in); err != nil {
		c.HTML(http.StatusOK, "register.html", gin.H{"Error": formMessage(err)})
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// ShowLogin は GET /login のハンドラーです。
func (h *Handler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Error": nil})
}

// Login は POST /login のハンドラーです。
// 成功するとセッショントークンをクッキーに載せてダッシュボードへ移動します。
func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	token, _, err := h.svc.Login(c.Request.Context(), email, password)
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"Error": formMessage(err)})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyToken, token)
	if err := session.Save(); err != nil {
		log.Printf("saving session cookie failed: %v", err)
		c.HTML(http.StatusOK, "login.html", gin.H{"Error": genericErrorMessage})
		return
	}

	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout は GET /logout のハンドラーです。2回目以降の呼び出しもエラーにはなりません。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), CurrentToken(c)); err != nil {
		log.Printf("destroying session failed: %v", err)
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Printf("clearing session cookie failed: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// ShowDashboard は GET /dashboard のハンドラーです。
func (h *Handler) ShowDashboard(c *gin.Context) {
	record, _ := CurrentSession(c)
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"User": record})
}

// ShowEditProfile は GET /edit-profile のハンドラーです。
func (h *Handler) ShowEditProfile(c *gin.Context) {
	record, _ := CurrentSession(c)
	c.HTML(http.StatusOK, "edit-profile.html", gin.H{"User": record, "Error": nil})
}

// UpdateProfile は POST /edit-profile のハンドラーです。
// 画像が新たにアップロードされた場合のみプロフィール画像を差し替えます。
func (h *Handler) UpdateProfile(c *gin.Context) {
	record, _ := CurrentSession(c)

	picturePath, ok := h.savePicture(c, "edit-profile.html", gin.H{"User": record})
	if !ok {
		return
	}

	_, err := h.svc.UpdateProfile(
		c.Request.Context(),
		CurrentToken(c),
		record.UserID,
		c.PostForm("username"),
		c.PostForm("email"),
		picturePath,
	)
	if err != nil {
		c.HTML(http.StatusOK, "edit-profile.html", gin.H{"User": record, "Error": formMessage(err)})
		return
	}

	c.Redirect(http.StatusFound, "/dashboard")
}

// ShowUser は GET /users/:id のハンドラーです。
// アクセス制御（本人または管理者）はミドルウェア側で済んでいます。
func (h *Handler) ShowUser(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("loading profile failed: %v", err)
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                 user.ID,
		"username":           user.Username,
		"email":              user.Email,
		"role":               user.Role,
		"profilePicturePath": user.ProfilePicturePath,
	})
}

// savePicture は任意のアップロード欄 profilePic を処理します。
// ファイルが添付されていなければ空のパスを返します。失敗した場合は
// 指定のテンプレートをエラー付きで描画し、ok=false を返します。
func (h *Handler) savePicture(c *gin.Context, template string, data gin.H) (string, bool) {
	fh, err := c.FormFile("profilePic")
	if err != nil {
		// 添付なしは正常系
		return "", true
	}

	path, err := h.saver.Save(fh)
	if err != nil {
		data["Error"] = uploadMessage(err)
		c.HTML(http.StatusOK, template, data)
		return "", false
	}
	return path, true
}

// formMessage はサービス層のエラーをフォームに表示するメッセージへ変換します。
func formMessage(err error) string {
	if msg, ok := apperr.UserMessage(err); ok {
		return msg
	}
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountLocked) {
		return err.Error()
	}
	log.Printf("auth handler error: %v", err)
	return genericErrorMessage
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, upload.ErrNotAnImage):
		return "Profile picture must be an image."
	case errors.Is(err, upload.ErrTooLarge):
		return "Profile picture is too large."
	default:
		log.Printf("saving upload failed: %v", err)
		return genericErrorMessage
	}
}
