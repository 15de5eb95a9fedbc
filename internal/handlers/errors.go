package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrconnect/hr-directory/internal/form"
	"github.com/hrconnect/hr-directory/internal/middleware"
	"github.com/hrconnect/hr-directory/internal/session"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends {"error": message} and attaches err for the request log
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails adds a details field to the error response
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// statusForError maps a create failure onto an HTTP status
func statusForError(err error) int {
	switch {
	case errors.Is(err, form.ErrSubmitInProgress):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// requireSession fetches the request's directory session or aborts with 500
func requireSession(c *gin.Context) (*session.Session, bool) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, apperrors.GenericMessage, err)
		c.Abort()
		return nil, false
	}
	return sess, true
}
