// Package repo holds the read-through cache every catalog-style repository
// is built on. A Cached repository never returns transport errors: failures
// are logged and converted to safe defaults so callers only see empty lists,
// nil records or false.
package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
)

const loadAllKey = "load_all"

// Options configures a Cached repository.
type Options[T remote.Record] struct {
	// Entity names the repository in logs and metrics.
	Entity string
	// TTL is how long a successful LoadAll stays fresh.
	TTL time.Duration
	// Normalize is applied to every record read from the store.
	Normalize func(T) T
	Logger    *logger.Logger
	Metrics   *metrics.CacheMetrics
	// Now defaults to time.Now.
	Now func() time.Time
}

type snapshot[T any] struct {
	timestamp time.Time
	data      []T
}

// Cached wraps one remote table with a time-boxed cache and single-flight
// de-duplication of LoadAll.
type Cached[T remote.Record] struct {
	table     remote.Table[T]
	entity    string
	ttl       time.Duration
	normalize func(T) T
	logg      *logger.Logger
	metrics   *metrics.CacheMetrics
	now       func() time.Time

	mu    sync.RWMutex
	cache *snapshot[T]

	group singleflight.Group
}

// New builds a Cached repository over table.
func New[T remote.Record](table remote.Table[T], opts Options[T]) *Cached[T] {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Normalize == nil {
		opts.Normalize = func(v T) T { return v }
	}
	if opts.Entity == "" {
		opts.Entity = table.Name()
	}
	return &Cached[T]{
		table:     table,
		entity:    opts.Entity,
		ttl:       opts.TTL,
		normalize: opts.Normalize,
		logg:      opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
}

// Entity returns the repository name used in logs.
func (r *Cached[T]) Entity() string {
	return r.entity
}

// Table exposes the underlying remote table for filtered reads that bypass
// the cache.
func (r *Cached[T]) Table() remote.Table[T] {
	return r.table
}

func (r *Cached[T]) fresh() ([]T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cache == nil || r.now().Sub(r.cache.timestamp) >= r.ttl {
		return nil, false
	}
	return r.cache.data, true
}

func (r *Cached[T]) previous() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cache == nil {
		return []T{}
	}
	return r.cache.data
}

// LoadAll returns every record, newest first. A fresh cache is served
// without touching the store; otherwise concurrent callers share a single
// fetch. When the fetch fails the previous cache (or an empty list) is
// returned instead.
func (r *Cached[T]) LoadAll(ctx context.Context) []T {
	if data, ok := r.fresh(); ok {
		r.metrics.IncHit(r.entity)
		return slices.Clone(data)
	}
	r.metrics.IncMiss(r.entity)

	// the fetch outlives any single caller's cancellation because every
	// waiter shares its result
	fetchCtx := context.WithoutCancel(ctx)
	result, _, _ := r.group.Do(loadAllKey, func() (any, error) {
		if data, ok := r.fresh(); ok {
			return data, nil
		}
		return r.fetchAll(fetchCtx), nil
	})
	return slices.Clone(result.([]T))
}

func (r *Cached[T]) fetchAll(ctx context.Context) []T {
	started := r.now()
	rows, err := r.table.SelectAll(ctx)
	r.metrics.ObserveFetch(r.entity, r.now().Sub(started))
	if err != nil {
		r.fail(ctx, "load_all", err)
		return r.previous()
	}

	normalized := make([]T, len(rows))
	for i, row := range rows {
		normalized[i] = r.normalize(row)
	}

	r.mu.Lock()
	r.cache = &snapshot[T]{timestamp: r.now(), data: normalized}
	r.mu.Unlock()
	return normalized
}

// LoadByID serves a cached record when present, even a stale one, and
// otherwise fetches it. Not-found and store errors both yield nil.
func (r *Cached[T]) LoadByID(ctx context.Context, id int64) *T {
	if cached := r.cached(id); cached != nil {
		r.metrics.IncHit(r.entity)
		return cached
	}
	r.metrics.IncMiss(r.entity)

	row, err := r.table.SelectByID(ctx, id)
	if err != nil {
		r.fail(ctx, "load_by_id", err)
		return nil
	}
	if row == nil {
		return nil
	}
	normalized := r.normalize(*row)
	r.patch(func(data []T) []T { return applyUpdate(data, normalized) })
	return &normalized
}

func (r *Cached[T]) cached(id int64) *T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cache == nil {
		return nil
	}
	if i := indexOf(r.cache.data, id); i >= 0 {
		found := r.cache.data[i]
		return &found
	}
	return nil
}

// Create inserts record and returns the stored row with its server-assigned
// id, or nil when the insert failed. The cache is only touched on success.
func (r *Cached[T]) Create(ctx context.Context, record T) *T {
	row, err := r.table.Insert(ctx, &record)
	if err != nil {
		r.fail(ctx, "create", err)
		return nil
	}
	if row == nil {
		return nil
	}
	normalized := r.normalize(*row)
	r.patch(func(data []T) []T { return applyCreate(data, normalized) })
	return &normalized
}

// Update applies a partial update and returns the updated row, or nil.
func (r *Cached[T]) Update(ctx context.Context, id int64, patch remote.Patch) *T {
	row, err := r.table.Update(ctx, id, patch)
	if err != nil {
		r.fail(ctx, "update", err)
		return nil
	}
	if row == nil {
		return nil
	}
	normalized := r.normalize(*row)
	r.patch(func(data []T) []T { return applyUpdate(data, normalized) })
	return &normalized
}

// Delete removes the row and reports whether the store accepted it.
func (r *Cached[T]) Delete(ctx context.Context, id int64) bool {
	if err := r.table.Delete(ctx, id); err != nil {
		r.fail(ctx, "delete", err)
		return false
	}
	r.patch(func(data []T) []T { return applyDelete(data, id) })
	return true
}

// patch rewrites the cached data in place, keeping its timestamp. It is a
// no-op when nothing is cached.
func (r *Cached[T]) patch(fn func([]T) []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return
	}
	r.cache = &snapshot[T]{timestamp: r.cache.timestamp, data: fn(r.cache.data)}
}

func (r *Cached[T]) fail(ctx context.Context, op string, err error) {
	r.metrics.IncFailure(r.entity, op)
	ctx = r.logg.WithFields(r.logg.WithEntity(ctx, r.entity), map[string]any{"op": op})
	r.logg.Error(ctx, "repository.remote_failed", err)
}
