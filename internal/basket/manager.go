package basket

import (
	"context"
	"sync"

	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// Manager opens baskets by id. Nothing is cached between calls: every Open
// re-reads local storage, so a basket written by another replica is seen on
// the next request.
type Manager struct {
	kv        localstore.Store
	keyPrefix string
	logg      *logger.Logger

	mu    sync.Mutex
	locks map[string]*basketLock
}

// basketLock is held while one basket is read, changed and written back.
// It is dropped from the map once no caller holds or waits on it.
type basketLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager builds a manager persisting baskets under
// "<keyPrefix>:<basketID>".
func NewManager(kv localstore.Store, keyPrefix string, logg *logger.Logger) *Manager {
	if keyPrefix == "" {
		keyPrefix = DefaultStorageKey
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Manager{kv: kv, keyPrefix: keyPrefix, logg: logg, locks: make(map[string]*basketLock)}
}

// StorageKey is where basketID is persisted.
func (m *Manager) StorageKey(basketID string) string {
	return m.keyPrefix + ":" + basketID
}

// Open returns a freshly hydrated copy of basketID for reading.
func (m *Manager) Open(ctx context.Context, basketID string) *Store {
	return Open(m.logg.WithBasketID(ctx, basketID), m.kv, m.StorageKey(basketID), m.logg)
}

// Update hydrates basketID and runs fn on it while holding the basket's lock,
// so concurrent updates in this process apply one after another on top of
// each other's writes. The returned Store reflects fn's changes.
func (m *Manager) Update(ctx context.Context, basketID string, fn func(*Store) error) (*Store, error) {
	unlock := m.lock(basketID)
	defer unlock()

	s := m.Open(ctx, basketID)
	if err := fn(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) lock(basketID string) func() {
	m.mu.Lock()
	l, ok := m.locks[basketID]
	if !ok {
		l = &basketLock{}
		m.locks[basketID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, basketID)
		}
		m.mu.Unlock()
	}
}

