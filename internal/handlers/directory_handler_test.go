package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/middleware"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/internal/session"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	mu        sync.Mutex
	result    *models.ListResult
	createErr error
	lists     []models.ListParams
	created   []models.ContactRecord
	createCtx []error
}

func (b *stubBackend) List(_ context.Context, params models.ListParams) (*models.ListResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists = append(b.lists, params)
	if b.result == nil {
		return &models.ListResult{Data: []models.ContactRecord{}, TotalPages: 1}, nil
	}
	return b.result, nil
}

func (b *stubBackend) Create(ctx context.Context, rec models.ContactRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, rec)
	b.createCtx = append(b.createCtx, ctx.Err())
	return b.createErr
}

func (b *stubBackend) lastList() models.ListParams {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lists) == 0 {
		return models.ListParams{}
	}
	return b.lists[len(b.lists)-1]
}

func newTestRouter(t *testing.T, backend *stubBackend) (*gin.Engine, *session.Session) {
	t.Helper()

	sess := session.New("test-session", session.Options{Backend: backend, Catalog: catalog.Default()})
	t.Cleanup(sess.Close)

	dir := NewDirectoryHandler(catalog.Default(), 2*time.Second)
	forms := NewFormHandler()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.SessionContextKey, sess)
		c.Next()
	})
	router.GET("/", dir.Page)
	router.GET("/directory/view", dir.View)
	router.POST("/directory/query", dir.SetQuery)
	router.POST("/directory/role", dir.SetRole)
	router.POST("/directory/location", dir.SetLocation)
	router.POST("/directory/page", dir.SetPage)
	router.POST("/directory/clear", dir.Clear)
	router.GET("/directory/form", forms.Get)
	router.POST("/directory/form/open", forms.Open)
	router.POST("/directory/form/close", forms.Close)
	router.POST("/directory/form/field", forms.SetField)
	router.POST("/directory/contacts", forms.Submit)

	return router, sess
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func waitIdle(t *testing.T, sess *session.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Controller.Wait(ctx))
}

func validContactJSON() string {
	return `{"name":"Asha Rao","contactNumber":"9876543210","companyName":"Acme","role":"HR","location":"pune"}`
}

func TestDirectoryHandler_PageRestoresFromURL(t *testing.T) {
	backend := &stubBackend{result: &models.ListResult{
		Data:       []models.ContactRecord{{Name: "Anna Bell", ContactNumber: "9000000001", CompanyName: "Initech", Role: "CTO", Location: "pune"}},
		TotalPages: 3,
	}}
	router, _ := newTestRouter(t, backend)

	w := doRequest(router, http.MethodGet, "/?query=ann&role=cto&page=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, models.ListParams{SearchQuery: "ann", Role: "CTO", Page: 2}, backend.lastList())

	body := w.Body.String()
	assert.Contains(t, body, `<span class="highlight">Ann</span>a Bell`)
	assert.Contains(t, body, `<option value="CTO" selected>CTO</option>`)
	assert.Contains(t, body, `aria-current="page">2</button>`)
}

func TestDirectoryHandler_SetRoleUpdatesURL(t *testing.T) {
	backend := &stubBackend{}
	router, sess := newTestRouter(t, backend)

	w := doRequest(router, http.MethodPost, "/directory/role", `{"code":"cto"}`)
	waitIdle(t, sess)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"url":"role=CTO"}`, w.Body.String())
	assert.Equal(t, models.ListParams{Role: "CTO", Page: 1}, backend.lastList())
	assert.Equal(t, "CTO", sess.RoleFilter.Value())
}

func TestDirectoryHandler_SetLocationAnyClears(t *testing.T) {
	backend := &stubBackend{}
	router, sess := newTestRouter(t, backend)

	doRequest(router, http.MethodPost, "/directory/location", `{"code":"pune"}`)
	w := doRequest(router, http.MethodPost, "/directory/location", `{"code":"any"}`)
	waitIdle(t, sess)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.ListParams{Page: 1}, backend.lastList())
	assert.Empty(t, sess.LocationFilter.Value())
}

func TestDirectoryHandler_SetPageValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubBackend{})

	w := doRequest(router, http.MethodPost, "/directory/page", `{"page":0}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request")
}

func TestDirectoryHandler_QueryThenClear(t *testing.T) {
	backend := &stubBackend{}
	router, sess := newTestRouter(t, backend)

	w := doRequest(router, http.MethodPost, "/directory/query", `{"query":"john"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "john", sess.Controller.View().State.Query)
	assert.True(t, sess.Controller.View().Loading)

	w = doRequest(router, http.MethodPost, "/directory/clear", "")
	waitIdle(t, sess)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.ListParams{Page: 1}, backend.lastList())
	assert.Empty(t, sess.Controller.View().State.Query)
}

func TestDirectoryHandler_ViewDrainsNotifications(t *testing.T) {
	backend := &stubBackend{createErr: apperrors.UnavailableError("contact-api", errors.New("connection refused"))}
	router, sess := newTestRouter(t, backend)

	doRequest(router, http.MethodPost, "/directory/contacts", validContactJSON())
	waitIdle(t, sess)

	w := doRequest(router, http.MethodGet, "/directory/view", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, models.NotificationError, view.Notifications[0].Level)
	assert.Equal(t, []int{1}, view.Pages)
	assert.Equal(t, catalog.AnyValue, view.Role.Value)

	w = doRequest(router, http.MethodGet, "/directory/view", "")
	var again ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Empty(t, again.Notifications)
}

func TestDirectoryHandler_MissingSession(t *testing.T) {
	router := gin.New()
	router.GET("/directory/view", NewDirectoryHandler(nil, 0).View)

	w := doRequest(router, http.MethodGet, "/directory/view", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"`+apperrors.GenericMessage+`"}`, w.Body.String())
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 0, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{5, 10, []int{2, 3, 4, 5, 6, 7, 8}},
		{10, 10, []int{4, 5, 6, 7, 8, 9, 10}},
		{1, 20, []int{1, 2, 3, 4, 5, 6, 7}},
		{2, 0, []int{1, 2}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pageWindow(tt.current, tt.total), "current=%d total=%d", tt.current, tt.total)
	}
}
