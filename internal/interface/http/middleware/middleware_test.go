package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
	"github.com/xiebiao/tintayhojas/pkg/jwt"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	store    *apptest.Store
	sessions *apptest.Sessions
	jwt      *jwt.Manager
	auth     *AuthMiddleware
}

func newAuthFixture() *authFixture {
	store := apptest.NewStore()
	sessions := apptest.NewSessions()
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	return &authFixture{
		store:    store,
		sessions: sessions,
		jwt:      manager,
		auth:     NewAuthMiddleware(manager, sessions, store.Users()),
	}
}

func (f *authFixture) tokens(t *testing.T, userID uint, username string) *jwt.TokenPair {
	t.Helper()
	pair, err := f.jwt.GenerateToken(jwt.Identity{UserID: userID, Username: username})
	require.NoError(t, err)
	return pair
}

func serve(r *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func whoami(c *gin.Context) {
	response.Success(c, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
}

func TestRequireAuth(t *testing.T) {
	f := newAuthFixture()
	u := f.store.AddUser("lectora", false)
	pair := f.tokens(t, u.ID, u.Username)

	r := gin.New()
	r.GET("/me", f.auth.RequireAuth(), whoami)

	_, body := serve(r, http.MethodGet, "/me", "")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, body.Code)
	assert.Equal(t, "/login", body.Redirect)

	_, body = serve(r, http.MethodGet, "/me", "not-a-jwt")
	assert.Equal(t, apperrors.ErrCodeInvalidToken, body.Code)

	_, body = serve(r, http.MethodGet, "/me", pair.RefreshToken)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, body.Code, "Refresh Token不能当Access Token使用")

	_, body = serve(r, http.MethodGet, "/me", pair.AccessToken)
	require.Equal(t, 0, body.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(u.ID), data["user_id"])
	assert.Equal(t, "lectora", data["username"])
}

func TestRequireAuthRejectsBlacklistedToken(t *testing.T) {
	f := newAuthFixture()
	u := f.store.AddUser("lectora", false)
	pair := f.tokens(t, u.ID, u.Username)
	require.NoError(t, f.sessions.AddToBlacklist(context.Background(), pair.AccessToken, time.Hour))

	r := gin.New()
	r.GET("/me", f.auth.RequireAuth(), whoami)

	_, body := serve(r, http.MethodGet, "/me", pair.AccessToken)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, body.Code)
	assert.Equal(t, "/login", body.Redirect)
}

func TestOptionalAuth(t *testing.T) {
	f := newAuthFixture()
	u := f.store.AddUser("lectora", false)
	pair := f.tokens(t, u.ID, u.Username)

	r := gin.New()
	r.GET("/books/1", f.auth.OptionalAuth(), whoami)

	_, body := serve(r, http.MethodGet, "/books/1", "")
	require.Equal(t, 0, body.Code)
	assert.Equal(t, float64(0), body.Data.(map[string]interface{})["user_id"])

	_, body = serve(r, http.MethodGet, "/books/1", "garbage")
	require.Equal(t, 0, body.Code)
	assert.Equal(t, float64(0), body.Data.(map[string]interface{})["user_id"])

	_, body = serve(r, http.MethodGet, "/books/1", pair.AccessToken)
	assert.Equal(t, float64(u.ID), body.Data.(map[string]interface{})["user_id"])
}

func TestRequireStaffChecksDatabase(t *testing.T) {
	f := newAuthFixture()
	customer := f.store.AddUser("cliente", false)
	staff := f.store.AddUser("empleada", true)

	r := gin.New()
	r.GET("/admin", f.auth.RequireAuth(), f.auth.RequireStaff(), whoami)

	// Token声明了is_staff也没用，以数据库为准
	forged, err := f.jwt.GenerateToken(jwt.Identity{UserID: customer.ID, Username: customer.Username, IsStaff: true})
	require.NoError(t, err)
	_, body := serve(r, http.MethodGet, "/admin", forged.AccessToken)
	assert.Equal(t, apperrors.ErrCodeStaffRequired, body.Code)
	assert.Equal(t, "/", body.Redirect)

	_, body = serve(r, http.MethodGet, "/admin", f.tokens(t, staff.ID, staff.Username).AccessToken)
	assert.Equal(t, 0, body.Code)

	// 用户已被删除
	_, body = serve(r, http.MethodGet, "/admin", f.tokens(t, 999, "fantasma").AccessToken)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, body.Code)
}

func TestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(gecho.NewDefaultLogger()))
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, GetRequestID(c))
	})

	w, body := serve(r, http.MethodGet, "/ping", "")
	id := w.Header().Get("X-Request-ID")
	assert.Len(t, id, 36)
	assert.Equal(t, id, body.Data)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestLoggerRecordsUsername(t *testing.T) {
	f := newAuthFixture()
	u := f.store.AddUser("lectora", false)
	pair := f.tokens(t, u.ID, u.Username)

	var buf bytes.Buffer
	logger := gecho.NewLogger(gecho.NewConfig(
		gecho.WithLogFormat(gecho.LogFormatJSON),
		gecho.WithOutput(&buf),
		gecho.WithShowCaller(false),
	))

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/me", f.auth.RequireAuth(), whoami)
	r.GET("/ping", func(c *gin.Context) { response.Success(c, nil) })

	serve(r, http.MethodGet, "/me", pair.AccessToken)
	assert.Contains(t, buf.String(), `"username":"lectora"`)

	buf.Reset()
	serve(r, http.MethodGet, "/ping", "")
	assert.Contains(t, buf.String(), `"username":""`)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{
		AllowOrigins: []string{"https://tienda.example"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))
	called := false
	r.Any("/api/v1/cart", func(c *gin.Context) {
		called = true
		response.Success(c, nil)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://tienda.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://tienda.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://otro.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, called)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2})
	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { response.Success(c, nil) })

	for i := 0; i < 2; i++ {
		_, body := serve(r, http.MethodPost, "/login", "")
		assert.Equal(t, 0, body.Code)
	}
	_, body := serve(r, http.MethodPost, "/login", "")
	assert.Equal(t, apperrors.ErrCodeTooManyRequests, body.Code)

	// 其他IP不受影响
	now := time.Now()
	assert.True(t, rl.allow("10.0.0.2", now))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: false, RPS: 0.001, Burst: 1})
	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { response.Success(c, nil) })

	for i := 0; i < 5; i++ {
		_, body := serve(r, http.MethodPost, "/login", "")
		assert.Equal(t, 0, body.Code)
	}
}

func TestRateLimiterForgetsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	start := time.Now()
	rl.allow("10.0.0.1", start)
	require.Len(t, rl.visitors, 1)

	rl.allow("10.0.0.2", start.Add(2*visitorTTL))
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestMetricsMiddlewareWithoutInit(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/ping", func(c *gin.Context) { response.Success(c, "pong") })

	w, _ := serve(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
