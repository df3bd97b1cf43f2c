// Package basket is the customer's shopping basket (the "Tokri"). A basket
// is an ordered list of lines persisted to local storage as a whole JSON
// array after every mutation.
package basket

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// DefaultStorageKey is the local storage key baskets are persisted under.
const DefaultStorageKey = "phool_cart_v1"

// Line is one basket entry. Name, Price and Image are captured when the
// line is first added and do not follow later catalog changes.
type Line struct {
	ID         int64             `json:"id"`
	Kind       enums.CatalogKind `json:"kind,omitempty"`
	Name       string            `json:"name"`
	Price      int64             `json:"price"`
	Quantity   int               `json:"quantity"`
	Image      string            `json:"image,omitempty"`
	CustomText string            `json:"customText,omitempty"`
}

// Key identifies a line. Two lines are the same line iff their keys are
// equal, custom text included.
type Key struct {
	Kind       enums.CatalogKind
	ID         int64
	CustomText string
}

// Key returns the line's identity.
func (l Line) Key() Key {
	return Key{Kind: normalizeKind(l.Kind), ID: l.ID, CustomText: l.CustomText}
}

func normalizeKind(kind enums.CatalogKind) enums.CatalogKind {
	if kind == "" {
		return enums.CatalogKindProduct
	}
	return kind
}

// Store holds one basket. Every operation is total: persistence failures are
// logged and the in-memory basket stays authoritative.
type Store struct {
	kv   localstore.Store
	key  string
	logg *logger.Logger

	mu    sync.Mutex
	lines []Line
}

// Open hydrates the basket stored under key. A missing or unreadable value
// yields an empty basket.
func Open(ctx context.Context, kv localstore.Store, key string, logg *logger.Logger) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{kv: kv, key: key, logg: logg, lines: []Line{}}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "key", s.key), "basket.hydrate_failed", err)
		return
	}
	if !ok || len(raw) == 0 {
		return
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "key", s.key), "basket.hydrate_corrupt")
		return
	}
	for _, l := range lines {
		l.Kind = normalizeKind(l.Kind)
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		s.lines = append(s.lines, l)
	}
}

// persist writes the full list. Callers hold mu.
func (s *Store) persist(ctx context.Context) {
	payload, err := json.Marshal(s.lines)
	if err != nil {
		s.logg.Error(ctx, "basket.encode_failed", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "key", s.key), "basket.persist_failed", err)
	}
}

func (s *Store) indexOf(key Key) int {
	return slices.IndexFunc(s.lines, func(l Line) bool { return l.Key() == key })
}

// AddItem merges qty into the line with item's key, or appends a new line.
// Quantities below 1 are raised to 1. There is no upper cap.
func (s *Store) AddItem(ctx context.Context, item Line, qty int) {
	if qty < 1 {
		qty = 1
	}
	item.Kind = normalizeKind(item.Kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(item.Key()); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		item.Quantity = qty
		s.lines = append(s.lines, item)
	}
	s.persist(ctx)
}

// RemoveItem drops the line matching key exactly.
func (s *Store) RemoveItem(ctx context.Context, key Key) {
	key.Kind = normalizeKind(key.Kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = slices.DeleteFunc(s.lines, func(l Line) bool { return l.Key() == key })
	s.persist(ctx)
}

// UpdateQuantity sets the matching line's quantity to max(1, qty). Removing
// a line is the only way to drop it to zero.
func (s *Store) UpdateQuantity(ctx context.Context, key Key, qty int) {
	key.Kind = normalizeKind(key.Kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(key); i >= 0 {
		s.lines[i].Quantity = max(1, qty)
	}
	s.persist(ctx)
}

// Clear empties the basket.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []Line{}
	s.persist(ctx)
}

// Lines returns a copy of the basket in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Contains reports whether a line with key exists.
func (s *Store) Contains(key Key) bool {
	key.Kind = normalizeKind(key.Kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(key) >= 0
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalItems(s.lines)
}

// TotalPrice is the sum of price times quantity.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.lines)
}

// TotalItems sums quantities over lines.
func TotalItems(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums price times quantity over lines.
func TotalPrice(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price * int64(l.Quantity)
	}
	return total
}
