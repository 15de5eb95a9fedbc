// Package session keeps the per-browser directory state on the server.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/internal/dropdown"
	"github.com/hrconnect/hr-directory/internal/form"
	"github.com/hrconnect/hr-directory/internal/models"
)

const maxQueuedNotifications = 20

// Session is one browser's directory page: the controller, its two filter
// selectors and the add-contact popup with its required selectors.
type Session struct {
	ID        string
	CreatedAt time.Time

	Controller     *directory.Controller
	RoleFilter     *dropdown.Selector
	LocationFilter *dropdown.Selector

	Form         *form.Form
	FormRole     *dropdown.Selector
	FormLocation *dropdown.Selector

	mu            sync.Mutex
	notifications []models.Notification
	loaded        bool
}

// Options are the collaborators shared by every session
type Options struct {
	Backend        directory.Backend
	Catalog        *catalog.Catalog
	SearchDebounce time.Duration
	FetchTimeout   time.Duration
}

// New wires a session: filter selectors drive the controller and the form's
// selectors write into the form.
func New(id string, opts Options) *Session {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	s := &Session{ID: id, CreatedAt: time.Now()}

	s.Controller = directory.New(directory.Config{
		Backend:        opts.Backend,
		Catalog:        cat,
		Notifier:       directory.NotifierFunc(s.enqueue),
		SearchDebounce: opts.SearchDebounce,
		FetchTimeout:   opts.FetchTimeout,
	})
	s.RoleFilter = dropdown.NewRoleSelector(cat, s.Controller.SetRole)
	s.LocationFilter = dropdown.NewLocationSelector(cat, s.Controller.SetLocation)

	s.Form = form.New(cat)
	s.FormRole = dropdown.New(dropdown.Config{
		Kind:        catalog.KindRole,
		Catalog:     cat,
		Placeholder: "Select Role",
		Required:    true,
		OnChange:    func(code string) { _ = s.Form.Set(models.FieldRole, code) },
	})
	s.FormLocation = dropdown.New(dropdown.Config{
		Kind:        catalog.KindLocation,
		Catalog:     cat,
		Placeholder: "Select Location",
		Required:    true,
		OnChange:    func(code string) { _ = s.Form.Set(models.FieldLocation, code) },
	})

	return s
}

// Load restores the directory from a URL query string and reflects the
// restored filters in the selectors. Only the first call per session loads;
// later calls report false.
func (s *Session) Load(rawQuery string) bool {
	s.mu.Lock()
	first := !s.loaded
	s.loaded = true
	s.mu.Unlock()

	if first {
		s.Controller.Load(rawQuery)
	}
	s.SyncFilters()
	return first
}

// Reload restores the directory from rawQuery unconditionally
func (s *Session) Reload(rawQuery string) {
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	s.Controller.Load(rawQuery)
	s.SyncFilters()
}

// SyncFilters reflects the controller's filters in the filter selectors
func (s *Session) SyncFilters() {
	st := s.Controller.View().State
	s.RoleFilter.SetSelected(st.Role)
	s.LocationFilter.SetSelected(st.Location)
}

// SetFormField edits one popup field. Role and location go through their
// selectors so the selector and the form agree.
func (s *Session) SetFormField(field, value string) error {
	switch field {
	case models.FieldRole:
		s.FormRole.Select(value)
		return nil
	case models.FieldLocation:
		s.FormLocation.Select(value)
		return nil
	}
	return s.Form.Set(field, value)
}

// SubmitForm validates the popup and creates the record through the
// controller. Field errors are mirrored onto the form's selectors.
func (s *Session) SubmitForm(ctx context.Context) (models.FieldErrors, error) {
	errs, err := s.Form.Submit(ctx, s.Controller.AddContact)
	if err != nil {
		return nil, err
	}

	s.FormRole.SetError(errs[models.FieldRole])
	s.FormLocation.SetError(errs[models.FieldLocation])
	if errs.HasErrors() {
		return errs, nil
	}

	s.FormRole.SetSelected("")
	s.FormLocation.SetSelected("")
	return nil, nil
}

// ResetFormSelectors mirrors the form's current role and location
func (s *Session) ResetFormSelectors() {
	v := s.Form.Values()
	s.FormRole.SetSelected(v.Role)
	s.FormLocation.SetSelected(v.Location)
}

func (s *Session) enqueue(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	if over := len(s.notifications) - maxQueuedNotifications; over > 0 {
		s.notifications = s.notifications[over:]
	}
}

// DrainNotifications returns and clears the queued notifications
func (s *Session) DrainNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

// Close stops the session's controller
func (s *Session) Close() {
	s.Controller.Close()
}
