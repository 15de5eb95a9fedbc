package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrconnect/hr-directory/internal/session"
	"github.com/hrconnect/hr-directory/pkg/jwt"
	"github.com/hrconnect/hr-directory/pkg/logger"
	"go.uber.org/zap"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "hr_directory_session"

	// SessionContextKey holds the *session.Session in the gin context
	SessionContextKey = "directory_session"

	// SessionIDContextKey holds the session id in the gin context
	SessionIDContextKey = "session_id"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// CookieConfig controls the session cookie attributes
type CookieConfig struct {
	Domain string
	Secure bool
}

// SessionMiddleware resolves the browser's directory session from its cookie.
// A missing, invalid or expired cookie, or an evicted session, starts a new
// session. The cookie is re-issued once half its lifetime has passed.
func SessionMiddleware(store *session.Store, tokenManager *jwt.TokenManager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			sessionID string
			issuedAt  time.Time
		)

		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			claims, err := tokenManager.ValidateToken(raw)
			if err != nil {
				_ = c.Error(fmt.Errorf("invalid session token: %w", err)) //nolint:errcheck
			} else {
				sessionID = claims.SessionID
				if claims.IssuedAt != nil {
					issuedAt = claims.IssuedAt.Time
				}
			}
		}

		sess, created := store.GetOrCreate(sessionID)
		if created || time.Since(issuedAt) > tokenManager.TTL()/2 {
			token, err := tokenManager.GenerateToken(sess.ID)
			if err != nil {
				logger.Error("Failed to issue session token", zap.Error(err))
				_ = c.Error(err) //nolint:errcheck
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
			SetSessionCookie(c, token, int(tokenManager.TTL().Seconds()), cookie)
		}

		c.Set(SessionContextKey, sess)
		c.Set(SessionIDContextKey, sess.ID)
		c.Next()
	}
}

// GetSession extracts the directory session from the gin context
func GetSession(c *gin.Context) (*session.Session, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	sess, ok := val.(*session.Session)
	if !ok {
		return nil, ErrInvalidSession
	}
	return sess, nil
}

// SetSessionCookie sets the HTTP-only session cookie
func SetSessionCookie(c *gin.Context, token string, maxAge int, cookie CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", cookie.Domain, cookie.Secure, true)
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c *gin.Context, cookie CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", cookie.Domain, cookie.Secure, true)
}
