// Package cache memoizes rendered responses for a bounded time window.
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Entry is one cached response.
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Backend stores entries. Implementations may evict on their own after ttl,
// but freshness is always decided by the ViewCache clock.
type Backend interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Store(ctx context.Context, key string, e Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Clock is the time source used for expiry.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// ViewCache keeps rendered views fresh for ttl. Writes elsewhere in the system
// do not invalidate it; entries go away on expiry or Clear. Concurrent misses
// on the same key may both compute and store; the last write wins.
type ViewCache struct {
	backend Backend
	ttl     time.Duration
	clock   Clock
	logger  *zap.Logger
}

// Option configures a ViewCache.
type Option func(*ViewCache)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(vc *ViewCache) { vc.clock = c }
}

// WithLogger sets the logger used for backend failures.
func WithLogger(l *zap.Logger) Option {
	return func(vc *ViewCache) { vc.logger = l }
}

// New creates a ViewCache over backend.
func New(backend Backend, ttl time.Duration, opts ...Option) *ViewCache {
	vc := &ViewCache{
		backend: backend,
		ttl:     ttl,
		clock:   SystemClock,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// TTL returns the freshness window.
func (vc *ViewCache) TTL() time.Duration {
	return vc.ttl
}

// Get returns a fresh entry for key. Stale entries are dropped and reported
// as a miss, as are backend errors.
func (vc *ViewCache) Get(ctx context.Context, key string) (Entry, bool) {
	e, ok, err := vc.backend.Load(ctx, key)
	if err != nil {
		vc.logger.Warn("cache load failed", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	if !vc.clock.Now().Before(e.ExpiresAt) {
		if err := vc.backend.Delete(ctx, key); err != nil {
			vc.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return Entry{}, false
	}
	return e, true
}

// Set stores body under key until now+ttl. A non-positive ttl disables caching.
func (vc *ViewCache) Set(ctx context.Context, key string, body []byte, contentType string) {
	if vc.ttl <= 0 {
		return
	}
	e := Entry{
		Body:        append([]byte(nil), body...),
		ContentType: contentType,
		ExpiresAt:   vc.clock.Now().Add(vc.ttl),
	}
	if err := vc.backend.Store(ctx, key, e, vc.ttl); err != nil {
		vc.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrCompute returns the fresh entry for key, or runs compute and caches
// its result. hit reports whether compute was skipped.
func (vc *ViewCache) GetOrCompute(ctx context.Context, key string, compute func() ([]byte, string, error)) (e Entry, hit bool, err error) {
	if cached, ok := vc.Get(ctx, key); ok {
		return cached, true, nil
	}
	body, contentType, err := compute()
	if err != nil {
		return Entry{}, false, err
	}
	vc.Set(ctx, key, body, contentType)
	return Entry{Body: body, ContentType: contentType, ExpiresAt: vc.clock.Now().Add(vc.ttl)}, false, nil
}

// Clear drops every entry immediately.
func (vc *ViewCache) Clear(ctx context.Context) error {
	return vc.backend.Clear(ctx)
}
