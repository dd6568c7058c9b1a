package auth

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"golang.org/x/crypto/bcrypt"
)

type stubSaver struct {
	path string
	err  error
}

func (s *stubSaver) Save(fh *multipart.FileHeader) (string, error) {
	return s.path, s.err
}

func newTestRouter(t *testing.T) (*gin.Engine, *Service, *fakeSessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newFakeUserStore()
	sessionStore := newFakeSessionStore()
	svc := NewService(users, sessionStore, bcrypt.MinCost)
	handler := NewHandler(svc, &stubSaver{})

	router := gin.New()
	router.LoadHTMLGlob("../../web/templates/*.html")
	router.Use(sessions.Sessions(SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	router.Use(LoadSession(sessionStore))

	router.GET("/register", handler.ShowRegister)
	router.POST("/register", handler.Register)
	router.GET("/login", handler.ShowLogin)
	router.POST("/login", handler.Login)
	router.GET("/logout", handler.Logout)
	router.GET("/dashboard", RequireAuthenticatedWeb(), handler.ShowDashboard)

	return router, svc, sessionStore
}

func postForm(t *testing.T, router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterHandlerSuccessRedirectsToLogin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postForm(t, router, "/register", url.Values{
		"username":        {"alice"},
		"email":           {"alice@x.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302; body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("location = %q, want /login", loc)
	}
}

func TestRegisterHandlerValidationErrorRerendersForm(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postForm(t, router, "/register", url.Values{
		"username":        {"alice"},
		"email":           {"alice@x.com"},
		"password":        {"secret1"},
		"confirmPassword": {"different"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Passwords do not match.") {
		t.Fatalf("expected inline error in body, got: %s", rec.Body.String())
	}
}

func TestLoginHandlerSuccessSetsCookieAndRedirects(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	rec := postForm(t, router, "/login", url.Values{
		"email":    {"alice@x.com"},
		"password": {"secret1"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302; body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("location = %q, want /dashboard", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	// 発行されたクッキーでダッシュボードに入れる
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	dashRec := httptest.NewRecorder()
	router.ServeHTTP(dashRec, req)
	if dashRec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", dashRec.Code)
	}
	if !strings.Contains(dashRec.Body.String(), "alice") {
		t.Fatalf("dashboard should show the user, got: %s", dashRec.Body.String())
	}
}

func TestLoginHandlerInvalidCredentialsRerendersForm(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	rec := postForm(t, router, "/login", url.Values{
		"email":    {"alice@x.com"},
		"password": {"wrong"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Fatalf("expected generic credentials error, got: %s", rec.Body.String())
	}
}

func TestLoginHandlerUnknownEmailUsesSameMessage(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postForm(t, router, "/login", url.Values{
		"email":    {"nobody@x.com"},
		"password": {"whatever"},
	})

	// 存在しないメールアドレスでもメッセージは同一
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Fatalf("expected generic credentials error, got: %s", rec.Body.String())
	}
}

func TestLoginHandlerLockedAccount(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		_, _, _ = svc.Login(context.Background(), "alice@x.com", "wrong")
	}

	rec := postForm(t, router, "/login", url.Values{
		"email":    {"alice@x.com"},
		"password": {"secret1"},
	})

	if !strings.Contains(rec.Body.String(), "Account is locked") {
		t.Fatalf("expected locked-account message, got: %s", rec.Body.String())
	}
}

func TestLogoutHandlerRedirectsHome(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("location = %q, want /", loc)
	}
}
