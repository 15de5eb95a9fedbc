package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	contactAPIAvailable func() bool
	sessionCount        func() int
}

// NewHealthHandler reports unhealthy while the contact API circuit is open
func NewHealthHandler(contactAPIAvailable func() bool, sessionCount func() int) *HealthHandler {
	return &HealthHandler{
		contactAPIAvailable: contactAPIAvailable,
		sessionCount:        sessionCount,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	sessions := 0
	if h.sessionCount != nil {
		sessions = h.sessionCount()
	}

	if h.contactAPIAvailable != nil && !h.contactAPIAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"reason":   "contact API circuit open",
			"sessions": sessions,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": sessions,
	})
}
