package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/internal/session"
	"github.com/hrconnect/hr-directory/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBackend struct{}

func (stubBackend) List(context.Context, models.ListParams) (*models.ListResult, error) {
	return &models.ListResult{TotalPages: 1}, nil
}

func (stubBackend) Create(context.Context, models.ContactRecord) error { return nil }

const testSecret = "0123456789abcdef0123456789abcdef"

func newSessionRouter(t *testing.T) (*gin.Engine, *session.Store, *jwt.TokenManager) {
	t.Helper()
	store := session.NewStore(session.StoreConfig{TTL: time.Minute, Options: session.Options{Backend: stubBackend{}}})
	t.Cleanup(store.Close)
	tm := jwt.NewTokenManager(testSecret, "hr-directory", time.Hour)

	router := gin.New()
	router.Use(SessionMiddleware(store, tm, CookieConfig{}))
	router.GET("/whoami", func(c *gin.Context) {
		sess, err := GetSession(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.ID)
	})
	return router, store, tm
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSessionMiddleware_CreatesSession(t *testing.T) {
	router, store, tm := newSessionRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	claims, err := tm.ValidateToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), claims.SessionID)
	assert.Equal(t, 1, store.Count())
}

func TestSessionMiddleware_ReusesSession(t *testing.T) {
	router, store, _ := newSessionRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody))
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody)
	req.AddCookie(cookie)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	assert.Equal(t, w.Body.String(), w2.Body.String())
	assert.Nil(t, sessionCookie(w2), "fresh cookie is not re-issued")
	assert.Equal(t, 1, store.Count())
}

func TestSessionMiddleware_InvalidTokenStartsNewSession(t *testing.T) {
	router, _, _ := newSessionRouter(t)
	forged := jwt.NewTokenManager("another-secret-another-secret-xx", "hr-directory", time.Hour)
	token, err := forged.GenerateToken("stolen")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "stolen", w.Body.String())
	assert.NotNil(t, sessionCookie(w))
}

func TestGetSession_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetSession(c)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	c.Set(SessionContextKey, "not a session")
	_, err = GetSession(c)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 2)

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestBodySizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodySizeLimitMiddleware(8))
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}
