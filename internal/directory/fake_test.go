package directory

import (
	"context"
	"sync"

	"github.com/hrconnect/hr-directory/internal/models"
)

type fakeBackend struct {
	mu      sync.Mutex
	lists   []models.ListParams
	creates []models.ContactRecord

	listFn   func(ctx context.Context, call int, params models.ListParams) (*models.ListResult, error)
	createFn func(ctx context.Context, rec models.ContactRecord) error
}

func (f *fakeBackend) List(ctx context.Context, params models.ListParams) (*models.ListResult, error) {
	f.mu.Lock()
	call := len(f.lists)
	f.lists = append(f.lists, params)
	fn := f.listFn
	f.mu.Unlock()

	if fn == nil {
		return &models.ListResult{Data: []models.ContactRecord{}, TotalPages: 1}, nil
	}
	return fn(ctx, call, params)
}

func (f *fakeBackend) Create(ctx context.Context, rec models.ContactRecord) error {
	f.mu.Lock()
	f.creates = append(f.creates, rec)
	fn := f.createFn
	f.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, rec)
}

func (f *fakeBackend) listCalls() []models.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ListParams(nil), f.lists...)
}

func (f *fakeBackend) createCalls() []models.ContactRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ContactRecord(nil), f.creates...)
}

type recorder struct {
	mu            sync.Mutex
	urls          []string
	notifications []models.Notification
}

func (r *recorder) Replace(rawQuery string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, rawQuery)
}

func (r *recorder) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func (r *recorder) Notifications() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.notifications...)
}
