package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrconnect/hr-directory/pkg/logger"
	"github.com/hrconnect/hr-directory/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	cacheName = "sessions"

	DefaultTTL             = time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// StoreConfig configures a Store
type StoreConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Options         Options
}

// Store keeps sessions in an expiring in-memory cache. Every access extends
// a session's lifetime; an expired or deleted session is closed.
type Store struct {
	cache   *gocache.Cache
	ttl     time.Duration
	options Options

	// serializes get-or-create so one id maps to one session
	mu sync.Mutex
}

// NewStore creates an empty store
func NewStore(cfg StoreConfig) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	s := &Store{
		cache:   gocache.New(cfg.TTL, cfg.CleanupInterval),
		ttl:     cfg.TTL,
		options: cfg.Options,
	}
	s.cache.OnEvicted(func(id string, v interface{}) {
		sess, ok := v.(*Session)
		if !ok {
			return
		}
		logger.Debug("Session evicted", zap.String("session_id", id))
		sess.Close()
		s.recordSize()
	})
	return s
}

// TTL returns the idle lifetime of a session
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the session with id and extends its lifetime
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*Session, bool) {
	v, found := s.cache.Get(id)
	if !found {
		metrics.CacheMisses.WithLabelValues(cacheName).Inc()
		return nil, false
	}

	sess, ok := v.(*Session)
	if !ok {
		logger.Error("Invalid session cache data type", zap.String("session_id", id))
		s.cache.Delete(id)
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(cacheName).Inc()
	s.cache.Set(id, sess, s.ttl)
	return sess, true
}

// Create starts a new session with a random id
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(uuid.NewString())
}

// GetOrCreate returns the session with id, or a fresh session when id is
// unknown. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.getLocked(id); ok {
			return sess, false
		}
	}
	return s.createLocked(uuid.NewString()), true
}

func (s *Store) createLocked(id string) *Session {
	sess := New(id, s.options)
	s.cache.Set(id, sess, s.ttl)
	s.recordSize()
	logger.Debug("Session created", zap.String("session_id", id))
	return sess
}

// Delete closes and removes the session with id
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// Close closes every session
func (s *Store) Close() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}

func (s *Store) recordSize() {
	metrics.CacheSize.WithLabelValues(cacheName).Set(float64(s.cache.ItemCount()))
}
