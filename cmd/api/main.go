// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/notekeep/internal/auth"
	"github.com/yourusername/notekeep/internal/config"
	"github.com/yourusername/notekeep/internal/notes"
	"github.com/yourusername/notekeep/internal/store"
	"github.com/yourusername/notekeep/internal/upload"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// 永続ストア（Redis）への接続
	rdb, err := store.Open(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	users := store.NewUsers(rdb)
	noteStore := store.NewNotes(rdb)
	sessionStore := store.NewSessions(rdb, sessionTTL)

	saver, err := upload.NewSaver(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.LoadHTMLGlob("web/templates/*.html")

	// クッキーはセッショントークンだけを運び、実体はRedis側のレコードが持つ
	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, cookieStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// アップロード済みプロフィール画像の配信
	router.Static("/uploads", cfg.UploadDir)

	setupRoutes(router, users, noteStore, sessionStore, saver, cfg)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes は画面と認証まわりの配線を行います。
func setupRoutes(
	router *gin.Engine,
	users *store.Users,
	noteStore *store.Notes,
	sessionStore *store.Sessions,
	saver *upload.Saver,
	cfg *config.Config,
) {
	authService := auth.NewService(users, sessionStore, cfg.BcryptCost)
	authHandler := auth.NewHandler(authService, saver)

	noteService := notes.NewService(noteStore)
	noteHandler := notes.NewHandler(noteService)

	// すべてのリクエストでクッキーのトークンをセッションレコードに解決する
	router.Use(auth.LoadSession(sessionStore))

	router.GET("/", authHandler.ShowHome)
	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	protected := router.Group("")
	protected.Use(auth.RequireAuthenticatedWeb())
	{
		protected.GET("/dashboard", authHandler.ShowDashboard)
		protected.GET("/edit-profile", authHandler.ShowEditProfile)
		protected.POST("/edit-profile", authHandler.UpdateProfile)

		protected.GET("/notes", noteHandler.List)
		protected.GET("/notes/new", noteHandler.ShowCreate)
		protected.POST("/notes", noteHandler.Create)
		protected.GET("/notes/:id/edit", noteHandler.ShowEdit)
		protected.POST("/notes/:id/edit", noteHandler.Update)
		protected.POST("/notes/:id/delete", noteHandler.Delete)
	}

	// プロフィールの参照は本人または管理者のみ
	router.GET("/users/:id",
		auth.RequireAuthenticated(),
		auth.RequireOwnerOrAdmin("id"),
		authHandler.ShowUser,
	)
}
