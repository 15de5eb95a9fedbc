// Package directory owns the directory page state: search text, role and
// location filters, pagination and the current result rows. It keeps the
// shareable URL in sync, debounces typing and applies only the newest response.
package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
	"github.com/hrconnect/hr-directory/pkg/logger"
	"github.com/hrconnect/hr-directory/pkg/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultSearchDebounce is the quiet period before a typed query is fetched
	DefaultSearchDebounce = 500 * time.Millisecond
	// DefaultFetchTimeout bounds a single list request
	DefaultFetchTimeout = 15 * time.Second

	// ContactAddedMessage is published after a successful create
	ContactAddedMessage = "New contact added successfully!"

	subscriberBuffer = 32
)

// Fetch triggers, used as metric labels
const (
	TriggerLoad     = "load"
	TriggerSearch   = "search"
	TriggerRole     = "role"
	TriggerLocation = "location"
	TriggerPage     = "page"
	TriggerClear    = "clear"
)

// ErrClosed is returned by operations on a closed controller
var ErrClosed = errors.New("directory controller is closed")

// Backend is the contact API as seen by the controller
type Backend interface {
	List(ctx context.Context, params models.ListParams) (*models.ListResult, error)
	Create(ctx context.Context, rec models.ContactRecord) error
}

// Navigator replaces the page URL's query string without adding history
type Navigator interface {
	Replace(rawQuery string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(rawQuery string)

// Replace calls f
func (f NavigatorFunc) Replace(rawQuery string) { f(rawQuery) }

// Notifier shows non-blocking messages to the user
type Notifier interface {
	Notify(n models.Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n models.Notification)

// Notify calls f
func (f NotifierFunc) Notify(n models.Notification) { f(n) }

// Config configures a Controller. Navigator and Notifier callbacks run while
// the controller's lock is held and must not call back into it.
type Config struct {
	Backend        Backend
	Catalog        *catalog.Catalog
	Navigator      Navigator
	Notifier       Notifier
	SearchDebounce time.Duration
	FetchTimeout   time.Duration
	// NewKey generates row keys; defaults to random UUIDs
	NewKey func() string
}

// View is a consistent snapshot of the directory
type View struct {
	Version uint64                `json:"version"`
	State   models.SearchState    `json:"state"`
	Rows    []models.DirectoryRow `json:"rows"`
	Loading bool                  `json:"loading"`
	// URL is the encoded query string, without the leading '?'
	URL string `json:"url"`
}

// EventKind distinguishes controller events
type EventKind string

const (
	EventView   EventKind = "view"
	EventNotify EventKind = "notify"
)

// Event is delivered to subscribers
type Event struct {
	Kind         EventKind            `json:"kind"`
	View         *View                `json:"view,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Controller serializes all directory state transitions behind one mutex.
// Network calls run on goroutines and rejoin under the mutex.
type Controller struct {
	backend      Backend
	catalog      *catalog.Catalog
	navigator    Navigator
	notifier     Notifier
	fetchTimeout time.Duration
	newKey       func() string

	pending   *tracker
	debouncer *Debouncer

	ctx  context.Context
	stop context.CancelFunc

	mu          sync.Mutex
	state       models.SearchState
	rows        []models.DirectoryRow
	loading     bool
	url         string
	version     uint64
	gen         uint64
	searchSeq   uint64
	cancelFetch context.CancelFunc
	subs        map[uint64]chan Event
	nextSub     uint64
	closed      bool
}

// New creates an idle controller in the default state. Call Load to issue the first fetch.
func New(cfg Config) *Controller {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.SearchDebounce < 0 {
		cfg.SearchDebounce = 0
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.NewKey == nil {
		cfg.NewKey = uuid.NewString
	}

	ctx, stop := context.WithCancel(context.Background())
	pending := &tracker{}

	return &Controller{
		backend:      cfg.Backend,
		catalog:      cfg.Catalog,
		navigator:    cfg.Navigator,
		notifier:     cfg.Notifier,
		fetchTimeout: cfg.FetchTimeout,
		newKey:       cfg.NewKey,
		pending:      pending,
		debouncer:    newTrackedDebouncer(cfg.SearchDebounce, pending),
		ctx:          ctx,
		stop:         stop,
		state:        models.DefaultSearchState(),
		rows:         []models.DirectoryRow{},
		subs:         make(map[uint64]chan Event),
	}
}

// Catalog returns the catalog the controller validates filters against
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// Load restores the state encoded in rawQuery and fetches the decoded page
func (c *Controller) Load(rawQuery string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	s := DecodeState(rawQuery, c.catalog)
	s.TotalPages = c.state.TotalPages
	c.state = s
	c.cancelSearchLocked()
	c.fetchLocked(TriggerLoad)
}

// SetQuery updates the search text at once and schedules a debounced fetch of
// page 1 with the current filters. The fetch uses the latest text.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.state.Query = text
	c.state.Page = 1
	c.loading = true
	c.searchSeq++
	seq := c.searchSeq

	if c.debouncer.Debounce(func() { c.fireSearch(seq) }) {
		metrics.SearchKeystrokesCoalesced.Inc()
	}
	c.publishViewLocked()
}

func (c *Controller) fireSearch(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.searchSeq {
		return
	}
	c.fetchLocked(TriggerSearch)
}

// SetRole applies a role filter ("" or "any" clears it) and fetches page 1
func (c *Controller) SetRole(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.state.Role = c.catalog.Normalize(catalog.KindRole, code)
	c.state.Page = 1
	c.cancelSearchLocked()
	c.fetchLocked(TriggerRole)
}

// SetLocation applies a location filter ("" or "any" clears it) and fetches page 1
func (c *Controller) SetLocation(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.state.Location = c.catalog.Normalize(catalog.KindLocation, code)
	c.state.Page = 1
	c.cancelSearchLocked()
	c.fetchLocked(TriggerLocation)
}

// SetPage fetches page n with the current query and filters
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if n < 1 {
		n = 1
	}
	c.state.Page = n
	c.cancelSearchLocked()
	c.fetchLocked(TriggerPage)
}

// Clear empties the search text and fetches page 1 with the current filters
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.state.Query = ""
	c.state.Page = 1
	c.cancelSearchLocked()
	c.fetchLocked(TriggerClear)
}

// cancelSearchLocked drops a pending debounced search; the caller's fetch
// already carries the latest query.
func (c *Controller) cancelSearchLocked() {
	c.searchSeq++
	c.debouncer.Cancel()
}

// fetchLocked rewrites the URL and issues one list request for the current
// state, superseding any request in flight.
func (c *Controller) fetchLocked(trigger string) {
	c.url = EncodeState(c.state)
	if c.navigator != nil {
		c.navigator.Replace(c.url)
	}

	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
	c.cancelFetch = cancel
	c.loading = true

	params := c.state.ListParams()
	metrics.DirectoryFetches.WithLabelValues(trigger).Inc()
	logger.Debug("Fetching directory page",
		zap.String("trigger", trigger),
		zap.String("search_query", params.SearchQuery),
		zap.String("role", params.Role),
		zap.String("location", params.Location),
		zap.Int("page", params.Page),
		zap.Uint64("generation", gen))

	c.pending.add()
	go c.runFetch(ctx, cancel, gen, params)

	c.publishViewLocked()
}

func (c *Controller) runFetch(ctx context.Context, cancel context.CancelFunc, gen uint64, params models.ListParams) {
	defer c.pending.done()
	defer cancel()

	res, err := c.backend.List(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		metrics.DirectoryFetchResults.WithLabelValues("stale").Inc()
		logger.Debug("Discarding stale directory response", zap.Uint64("generation", gen), zap.Uint64("latest", c.gen))
		return
	}
	c.cancelFetch = nil
	c.loading = false

	if err != nil {
		metrics.DirectoryFetchResults.WithLabelValues("failed").Inc()
		if errors.Is(err, context.Canceled) {
			// shutdown; nobody is looking
			c.publishViewLocked()
			return
		}
		logger.Warn("Directory fetch failed", zap.Error(err), zap.Int("page", params.Page))
		c.notifyLocked(models.Notification{Level: models.NotificationError, Message: apperrors.UserMessage(err)})
		c.publishViewLocked()
		return
	}

	metrics.DirectoryFetchResults.WithLabelValues("applied").Inc()
	c.applyResultLocked(res)
	c.publishViewLocked()
}

// applyResultLocked replaces the rows. Optimistic rows still awaiting
// confirmation stay visible after the fetched ones unless the fetch already
// contains their record.
func (c *Controller) applyResultLocked(res *models.ListResult) {
	rows := make([]models.DirectoryRow, 0, len(res.Data))
	for _, rec := range res.Data {
		key := rec.ID
		if key == "" {
			key = c.newKey()
		}
		rows = append(rows, models.DirectoryRow{Key: key, Record: rec})
	}
	fetched := len(rows)
	for _, r := range c.rows {
		if r.Pending && !containsRecord(rows[:fetched], r.Record) {
			rows = append(rows, r)
		}
	}
	c.rows = rows

	c.state.TotalPages = res.TotalPages
	if c.state.TotalPages < 1 {
		c.state.TotalPages = 1
	}
}

// AddContact shows rec at once as a pending row, then creates it. On failure
// exactly that row is removed, an error notification is published and the
// error is returned.
func (c *Controller) AddContact(ctx context.Context, rec models.ContactRecord) error {
	key := c.newKey()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.rows = append(c.rows, models.DirectoryRow{Key: key, Record: rec, Pending: true})
	c.pending.add()
	c.publishViewLocked()
	c.mu.Unlock()
	defer c.pending.done()

	// stop waiting when the controller shuts down
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopAfter := context.AfterFunc(c.ctx, cancel)
	defer stopAfter()

	err := c.backend.Create(ctx, rec)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		metrics.ContactCreations.WithLabelValues("error").Inc()
		logger.Warn("Contact creation failed", zap.Error(err), zap.String("row_key", key))
		c.removeRowLocked(key)
		if !errors.Is(err, context.Canceled) {
			c.notifyLocked(models.Notification{Level: models.NotificationError, Message: apperrors.UserMessage(err)})
		}
		c.publishViewLocked()
		return err
	}

	metrics.ContactCreations.WithLabelValues("success").Inc()
	logger.Info("Contact created", zap.String("row_key", key), zap.String("role", rec.Role), zap.String("location", rec.Location))
	for i := range c.rows {
		if c.rows[i].Key == key {
			c.rows[i].Pending = false
			break
		}
	}
	c.notifyLocked(models.Notification{Level: models.NotificationSuccess, Message: ContactAddedMessage})
	c.publishViewLocked()
	return nil
}

func containsRecord(rows []models.DirectoryRow, rec models.ContactRecord) bool {
	for _, r := range rows {
		if r.Record.SameContact(rec) {
			return true
		}
	}
	return false
}

func (c *Controller) removeRowLocked(key string) {
	for i, r := range c.rows {
		if r.Key == key {
			c.rows = append(c.rows[:i:i], c.rows[i+1:]...)
			return
		}
	}
}

// View returns a snapshot of the current state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	rows := make([]models.DirectoryRow, len(c.rows))
	copy(rows, c.rows)
	return View{
		Version: c.version,
		State:   c.state,
		Rows:    rows,
		Loading: c.loading,
		URL:     c.url,
	}
}

// Subscribe returns a channel of view and notification events, primed with
// the current view. Slow subscribers miss events rather than block the
// controller. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	v := c.viewLocked()
	ch <- Event{Kind: EventView, View: &v}

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Controller) publishViewLocked() {
	c.version++
	if len(c.subs) == 0 {
		return
	}
	v := c.viewLocked()
	c.broadcastLocked(Event{Kind: EventView, View: &v})
}

func (c *Controller) notifyLocked(n models.Notification) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
	c.broadcastLocked(Event{Kind: EventNotify, Notification: &n})
}

func (c *Controller) broadcastLocked(ev Event) {
	for id, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			logger.Debug("Dropping directory event for slow subscriber",
				zap.Uint64("subscriber", id), zap.String("kind", string(ev.Kind)))
		}
	}
}

// Closed reports whether Close has been called
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Wait blocks until no debounced search, fetch or create is outstanding
func (c *Controller) Wait(ctx context.Context) error {
	return c.pending.wait(ctx)
}

// Close cancels outstanding work, ends subscriptions and waits for the
// controller's goroutines to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelSearchLocked()
	c.stop()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()

	_ = c.pending.wait(context.Background())
}
