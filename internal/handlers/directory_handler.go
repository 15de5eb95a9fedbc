package handlers

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/internal/session"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
	"github.com/hrconnect/hr-directory/pkg/logger"
	"go.uber.org/zap"
)

// DefaultInitialLoadWait bounds how long the page render waits for the first fetch
const DefaultInitialLoadWait = 2 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").ParseFS(templateFS, "templates/page.html"))

type DirectoryHandler struct {
	catalog         *catalog.Catalog
	initialLoadWait time.Duration
}

func NewDirectoryHandler(cat *catalog.Catalog, initialLoadWait time.Duration) *DirectoryHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &DirectoryHandler{catalog: cat, initialLoadWait: initialLoadWait}
}

type queryRequest struct {
	Query string `json:"query" binding:"max=200"`
}

type filterRequest struct {
	Code string `json:"code" binding:"max=64"`
}

type pageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

type pageData struct {
	View ViewResponse
	Form FormResponse
	// RoleOptions and LocationOptions include the "any" entry
	RoleOptions     []optionItem
	LocationOptions []optionItem
}

type optionItem struct {
	Value    string
	Label    string
	Selected bool
}

// Page renders the directory page restored from the URL query string
func (h *DirectoryHandler) Page(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	raw := c.Request.URL.RawQuery
	if !sess.Load(raw) {
		want := directory.EncodeState(directory.DecodeState(raw, h.catalog))
		if want != sess.Controller.View().URL {
			sess.Reload(raw)
		}
	}

	if h.initialLoadWait > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.initialLoadWait)
		err := sess.Controller.Wait(ctx)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("Page rendered before directory load finished", zap.Error(err))
		}
	}

	view, err := h.view(sess)
	if err != nil {
		respondError(c, http.StatusInternalServerError, apperrors.GenericMessage, err)
		return
	}

	data := pageData{
		View:            view,
		Form:            buildForm(sess),
		RoleOptions:     optionItems(sess.RoleFilter.Options(), view.State.Role),
		LocationOptions: optionItems(sess.LocationFilter.Options(), view.State.Location),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		respondError(c, http.StatusInternalServerError, apperrors.GenericMessage, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// View returns the current directory view and drains queued notifications
func (h *DirectoryHandler) View(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	sess.Load(c.Request.URL.RawQuery)

	view, err := h.view(sess)
	if err != nil {
		respondError(c, http.StatusInternalServerError, apperrors.GenericMessage, err)
		return
	}
	view.Notifications = sess.DrainNotifications()

	c.JSON(http.StatusOK, view)
}

// SetQuery updates the search text; the fetch is debounced
func (h *DirectoryHandler) SetQuery(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", ParseValidationErrors(err), err)
		return
	}

	sess.Controller.SetQuery(req.Query)
	h.accepted(c, sess)
}

// SetRole applies the role filter through the filter selector
func (h *DirectoryHandler) SetRole(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", ParseValidationErrors(err), err)
		return
	}

	sess.RoleFilter.Select(req.Code)
	h.accepted(c, sess)
}

// SetLocation applies the location filter through the filter selector
func (h *DirectoryHandler) SetLocation(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", ParseValidationErrors(err), err)
		return
	}

	sess.LocationFilter.Select(req.Code)
	h.accepted(c, sess)
}

// SetPage navigates to another page of results
func (h *DirectoryHandler) SetPage(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", ParseValidationErrors(err), err)
		return
	}

	sess.Controller.SetPage(req.Page)
	h.accepted(c, sess)
}

// Clear empties the search text
func (h *DirectoryHandler) Clear(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	sess.Controller.Clear()
	h.accepted(c, sess)
}

// Events streams view and notification events as server-sent events until
// the client goes away or the session ends.
func (h *DirectoryHandler) Events(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	sess.Load(c.Request.URL.RawQuery)

	events, unsubscribe := sess.Controller.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, open := <-events:
			if !open {
				return false
			}
			switch ev.Kind {
			case directory.EventView:
				view, err := buildView(h.catalog, *ev.View)
				if err != nil {
					logger.Error("Failed to render directory view", zap.Error(err))
					return false
				}
				c.SSEvent(string(directory.EventView), view)
			case directory.EventNotify:
				// delivered here, so the polling endpoint must not repeat it
				sess.DrainNotifications()
				c.SSEvent(string(directory.EventNotify), ev.Notification)
			}
			return true
		}
	})
}

func (h *DirectoryHandler) view(sess *session.Session) (ViewResponse, error) {
	return buildView(h.catalog, sess.Controller.View())
}

func (h *DirectoryHandler) accepted(c *gin.Context, sess *session.Session) {
	c.JSON(http.StatusAccepted, gin.H{"url": sess.Controller.View().URL})
}

func optionItems(opts []models.Option, selected string) []optionItem {
	if selected == "" {
		selected = catalog.AnyValue
	}
	items := make([]optionItem, 0, len(opts))
	for _, o := range opts {
		items = append(items, optionItem{Value: o.Value, Label: o.Label, Selected: o.Value == selected})
	}
	return items
}
