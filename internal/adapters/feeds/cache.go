package feeds

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cache holds one feed payload for a TTL. Concurrent misses share a single
// upstream fetch; a failed refresh keeps serving the previous payload.
// After a failed load, lookups skip the upstream until backoff elapses.
type cache[T any] struct {
	ttl     time.Duration
	backoff time.Duration
	now     func() time.Time
	load    func(ctx context.Context) (T, error)

	mu       sync.RWMutex
	value    T
	fetched  time.Time
	ok       bool
	lastErr  error
	failedAt time.Time

	sf singleflight.Group
}

func newCache[T any](s sourceSettings, load func(ctx context.Context) (T, error)) *cache[T] {
	return &cache[T]{ttl: s.ttl, backoff: s.backoff, now: s.now, load: load}
}

// get returns the cached payload, loading it when missing or expired.
// stale is true when a reload failed and an expired payload was served.
func (c *cache[T]) get(ctx context.Context) (v T, stale bool, err error) {
	c.mu.RLock()
	v, fetched, ok := c.value, c.fetched, c.ok
	lastErr, failedAt := c.lastErr, c.failedAt
	c.mu.RUnlock()

	now := c.now()
	if ok && now.Sub(fetched) < c.ttl {
		return v, false, nil
	}
	if lastErr != nil && now.Sub(failedAt) < c.backoff {
		if ok {
			return v, true, nil
		}
		var zero T
		return zero, false, lastErr
	}

	fresh, err := c.refresh(ctx)
	if err != nil {
		if ok {
			return v, true, nil
		}
		var zero T
		return zero, false, err
	}
	return fresh, false, nil
}

// refresh forces a reload. The load outlives the caller's cancellation so
// one abandoned request cannot fail every caller sharing it; the caller
// stops waiting when ctx is done.
func (c *cache[T]) refresh(ctx context.Context) (T, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan("load", func() (any, error) {
		v, err := c.load(loadCtx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.lastErr, c.failedAt = err, c.now()
			return nil, err
		}
		c.value, c.fetched, c.ok = v, c.now(), true
		c.lastErr, c.failedAt = nil, time.Time{}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
