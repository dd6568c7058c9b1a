package notes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/notekeep/internal/apperr"
	"github.com/yourusername/notekeep/internal/auth"
	"github.com/yourusername/notekeep/internal/models"
)

const genericErrorMessage = "Something went wrong. Please try again."

// Handler はノートまわりのHTTPハンドラーをまとめた構造体です。
// ルートはすべてログイン必須で、所有者のIDはセッションから取ります。
type Handler struct {
	svc *Service
}

// NewHandler は Handler を作成します。
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List は GET /notes のハンドラーです。
// 一覧の取得に失敗した場合はエラーメッセージをそのまま画面に埋め込みます。
func (h *Handler) List(c *gin.Context) {
	record, _ := auth.CurrentSession(c)

	notes, err := h.svc.List(c.Request.Context(), record.UserID)
	if err != nil {
		log.Printf("listing notes failed: %v", err)
		c.HTML(http.StatusOK, "notes.html", gin.H{
			"User":  record,
			"Notes": nil,
			"Error": genericErrorMessage,
		})
		return
	}

	c.HTML(http.StatusOK, "notes.html", gin.H{
		"User":  record,
		"Notes": notes,
		"Error": nil,
	})
}

// ShowCreate は GET /notes/new のハンドラーです。
func (h *Handler) ShowCreate(c *gin.Context) {
	record, _ := auth.CurrentSession(c)
	c.HTML(http.StatusOK, "note-new.html", gin.H{"User": record, "Error": nil})
}

// Create は POST /notes のハンドラーです。
func (h *Handler) Create(c *gin.Context) {
	record, _ := auth.CurrentSession(c)

	_, err := h.svc.Create(c.Request.Context(), record.UserID, c.PostForm("title"), c.PostForm("content"))
	if err != nil {
		c.HTML(http.StatusOK, "note-new.html", gin.H{
			"User":  record,
			"Error": formMessage(err),
		})
		return
	}

	c.Redirect(http.StatusFound, "/notes")
}

// ShowEdit は GET /notes/:id/edit のハンドラーです。
// 所有していないノートのIDが指定された場合は一覧へ戻します。
func (h *Handler) ShowEdit(c *gin.Context) {
	record, _ := auth.CurrentSession(c)

	note, err := h.svc.Get(c.Request.Context(), record.UserID, c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusFound, "/notes")
		return
	}

	c.HTML(http.StatusOK, "note-edit.html", gin.H{
		"User":  record,
		"Note":  note,
		"Error": nil,
	})
}

// Update は POST /notes/:id/edit のハンドラーです。
// 所有していないノートへの更新は何も変更せず、一覧へのリダイレクトだけが起こります。
func (h *Handler) Update(c *gin.Context) {
	record, _ := auth.CurrentSession(c)

	_, err := h.svc.Update(c.Request.Context(), record.UserID, c.Param("id"),
		c.PostForm("title"), c.PostForm("content"))
	if err != nil {
		// 入力値を保ったままフォームを再描画する
		c.HTML(http.StatusOK, "note-edit.html", gin.H{
			"User": record,
			"Note": &models.Note{
				ID:      c.Param("id"),
				Title:   c.PostForm("title"),
				Content: c.PostForm("content"),
			},
			"Error": formMessage(err),
		})
		return
	}

	c.Redirect(http.StatusFound, "/notes")
}

// Delete は POST /notes/:id/delete のハンドラーです。常に一覧へ戻ります。
func (h *Handler) Delete(c *gin.Context) {
	record, _ := auth.CurrentSession(c)

	if err := h.svc.Delete(c.Request.Context(), record.UserID, c.Param("id")); err != nil {
		log.Printf("deleting note failed: %v", err)
	}

	c.Redirect(http.StatusFound, "/notes")
}

func formMessage(err error) string {
	if msg, ok := apperr.UserMessage(err); ok {
		return msg
	}
	log.Printf("notes handler error: %v", err)
	return genericErrorMessage
}
