package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type fixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RedisLimiter shares counters across instances through Redis.
type RedisLimiter struct {
	store fixedWindowStore
}

func NewRedisLimiter(store fixedWindowStore) *RedisLimiter {
	return &RedisLimiter{store: store}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	return l.store.FixedWindowAllow(ctx, key, limit, window)
}

// maxMemoryBuckets bounds the in-process limiter table.
const maxMemoryBuckets = 10000

type memoryBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is the single-instance fallback used when Redis is absent.
// Each key gets a token bucket that refills limit tokens per window, so a
// burst of limit is allowed and then hits are spread across the window.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*memoryBucket), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	if limit <= 0 || window <= 0 {
		return true, 0, nil
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxMemoryBuckets {
			l.prune(now, window)
		}
		every := rate.Every(window / time.Duration(limit))
		bucket = &memoryBucket{limiter: rate.NewLimiter(every, int(limit))}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now

	if bucket.limiter.AllowN(now, 1) {
		used := limit - int64(bucket.limiter.TokensAt(now))
		return true, used, nil
	}
	return false, limit + 1, nil
}

// prune drops buckets idle for a full window; those are back at full burst.
func (l *MemoryLimiter) prune(now time.Time, window time.Duration) {
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeen) >= window {
			delete(l.buckets, key)
		}
	}
}
