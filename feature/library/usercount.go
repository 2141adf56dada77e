package library

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// UserCounter supplies the total user count used to normalize popularity.
type UserCounter interface {
	TotalUsers(ctx context.Context) int
}

// CachedUserCounter caches the user count for a TTL. Concurrent refreshes are
// collapsed into one query. A failed refresh keeps serving the last known value.
type CachedUserCounter struct {
	count  func(ctx context.Context) (int64, error)
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	value   int
	fetched time.Time
}

// NewCachedUserCounter creates a counter backed by count.
func NewCachedUserCounter(count func(ctx context.Context) (int64, error), ttl time.Duration, logger *zap.Logger) *CachedUserCounter {
	return &CachedUserCounter{count: count, ttl: ttl, logger: logger, now: time.Now}
}

// TotalUsers returns the cached count, refreshing it when expired. It never
// returns less than one.
func (c *CachedUserCounter) TotalUsers(ctx context.Context) int {
	c.mu.RLock()
	value, fetched := c.value, c.fetched
	c.mu.RUnlock()

	if value > 0 && c.now().Sub(fetched) < c.ttl {
		return value
	}

	v, err, _ := c.group.Do("total_users", func() (any, error) {
		n, err := c.count(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.value = int(n)
		c.fetched = c.now()
		c.mu.Unlock()
		return int(n), nil
	})
	if err != nil {
		c.logger.Warn("Failed to refresh user count, using last known value", zap.Error(err), zap.Int("last", value))
		return max(value, 1)
	}
	return max(v.(int), 1)
}

// Invalidate forces the next call to query the store.
func (c *CachedUserCounter) Invalidate() {
	c.mu.Lock()
	c.fetched = time.Time{}
	c.mu.Unlock()
}
