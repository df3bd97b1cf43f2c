package basket

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// MaxCustomTextLength caps the personalisation message on custom items.
const MaxCustomTextLength = 150

// View is a basket with its derived totals.
type View struct {
	BasketID   string `json:"basket_id"`
	Lines      []Line `json:"lines"`
	TotalItems int    `json:"total_items"`
	TotalPrice int64  `json:"total_price"`
}

// AddInput adds a catalog item to a basket.
type AddInput struct {
	Kind       enums.CatalogKind
	ID         int64
	Quantity   int
	CustomText string
}

type itemLookup interface {
	Get(ctx context.Context, kind enums.CatalogKind, id int64) (catalog.Item, error)
}

// Service resolves catalog items into basket lines.
type Service interface {
	Get(ctx context.Context, basketID string) View
	Add(ctx context.Context, basketID string, input AddInput) (View, error)
	UpdateQuantity(ctx context.Context, basketID string, key Key, qty int) (View, error)
	Remove(ctx context.Context, basketID string, key Key) View
	Clear(ctx context.Context, basketID string) View
}

type service struct {
	baskets *Manager
	items   itemLookup
	logg    *logger.Logger
}

// NewService builds the basket service.
func NewService(baskets *Manager, items itemLookup, logg *logger.Logger) (Service, error) {
	if baskets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket manager is required")
	}
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog lookup is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{baskets: baskets, items: items, logg: logg}, nil
}

func view(basketID string, s *Store) View {
	lines := s.Lines()
	return View{
		BasketID:   basketID,
		Lines:      lines,
		TotalItems: TotalItems(lines),
		TotalPrice: TotalPrice(lines),
	}
}

func (s *service) Get(ctx context.Context, basketID string) View {
	return view(basketID, s.baskets.Open(ctx, basketID))
}

// Add looks the item up, captures its name, price and first image and
// merges it into the basket. Only custom items keep custom text.
func (s *service) Add(ctx context.Context, basketID string, input AddInput) (View, error) {
	kind := normalizeKind(input.Kind)
	item, err := s.items.Get(ctx, kind, input.ID)
	if err != nil {
		return View{}, err
	}
	if !item.InStock {
		return View{}, pkgerrors.New(pkgerrors.CodeConflict, "item is out of stock")
	}

	customText := ""
	if item.IsCustom {
		customText = strings.TrimSpace(input.CustomText)
		if customText == "" {
			return View{}, pkgerrors.New(pkgerrors.CodeValidation, "custom text is required for this item")
		}
		if utf8.RuneCountInString(customText) > MaxCustomTextLength {
			return View{}, pkgerrors.New(pkgerrors.CodeValidation, "custom text is too long").
				WithDetails(map[string]any{"max_length": MaxCustomTextLength})
		}
	}

	store, _ := s.baskets.Update(ctx, basketID, func(b *Store) error {
		b.AddItem(s.logg.WithBasketID(ctx, basketID), Line{
			ID:         item.ID,
			Kind:       kind,
			Name:       item.Name,
			Price:      item.Price,
			Image:      item.Thumbnail(),
			CustomText: customText,
		}, input.Quantity)
		return nil
	})
	return view(basketID, store), nil
}

// lineKey trims custom text the same way Add does, so a client echoing the
// text it sent can address the stored line.
func lineKey(key Key) Key {
	key.CustomText = strings.TrimSpace(key.CustomText)
	return key
}

func (s *service) UpdateQuantity(ctx context.Context, basketID string, key Key, qty int) (View, error) {
	key = lineKey(key)
	store, err := s.baskets.Update(ctx, basketID, func(b *Store) error {
		if !b.Contains(key) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "basket line not found")
		}
		b.UpdateQuantity(s.logg.WithBasketID(ctx, basketID), key, qty)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return view(basketID, store), nil
}

func (s *service) Remove(ctx context.Context, basketID string, key Key) View {
	key = lineKey(key)
	store, _ := s.baskets.Update(ctx, basketID, func(b *Store) error {
		b.RemoveItem(s.logg.WithBasketID(ctx, basketID), key)
		return nil
	})
	return view(basketID, store)
}

func (s *service) Clear(ctx context.Context, basketID string) View {
	store, _ := s.baskets.Update(ctx, basketID, func(b *Store) error {
		b.Clear(s.logg.WithBasketID(ctx, basketID))
		return nil
	})
	return view(basketID, store)
}
