package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver memoizes another resolver for ttl per subject.
// Negative results (nil profile) are cached as well.
type CachedResolver[U comparable] struct {
	next ProfileResolver[U]
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[U]cached
}

type cached struct {
	profile Profile
	expires time.Time
}

// NewCachedResolver wraps next.
func NewCachedResolver[U comparable](next ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{next: next, ttl: ttl, now: time.Now, entries: make(map[U]cached)}
}

func (c *CachedResolver[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	c.mu.RLock()
	e, ok := c.entries[subject]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expires) {
		return e.profile, nil
	}

	p, err := c.next.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[subject] = cached{profile: p, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return p, nil
}

// Invalidate drops the entry of one subject, e.g. after a role change.
func (c *CachedResolver[U]) Invalidate(subject U) {
	c.mu.Lock()
	delete(c.entries, subject)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *CachedResolver[U]) Purge() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}
