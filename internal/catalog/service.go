package catalog

import (
	"context"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
)

type productSource interface {
	LoadAll(ctx context.Context) []models.Product
	LoadByID(ctx context.Context, id int64) *models.Product
}

type cardSource interface {
	LoadAll(ctx context.Context) []models.Card
	LoadByID(ctx context.Context, id int64) *models.Card
}

// Service exposes the public shop listing over products and cards.
type Service interface {
	List(ctx context.Context, filter Filter) []Item
	Categories(ctx context.Context) []string
	Get(ctx context.Context, kind enums.CatalogKind, id int64) (Item, error)
}

type service struct {
	products productSource
	cards    cardSource
}

// NewService builds the listing service.
func NewService(products productSource, cards cardSource) (Service, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repository is required")
	}
	if cards == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card repository is required")
	}
	return &service{products: products, cards: cards}, nil
}

func (s *service) all(ctx context.Context) []Item {
	return Combine(s.products.LoadAll(ctx), s.cards.LoadAll(ctx))
}

// List filters and sorts the combined collection.
func (s *service) List(ctx context.Context, filter Filter) []Item {
	return Apply(s.all(ctx), filter)
}

// Categories lists every tag in use.
func (s *service) Categories(ctx context.Context) []string {
	return Categories(s.all(ctx))
}

// Get returns one product or card.
func (s *service) Get(ctx context.Context, kind enums.CatalogKind, id int64) (Item, error) {
	switch kind {
	case enums.CatalogKindProduct:
		if p := s.products.LoadByID(ctx, id); p != nil {
			return FromProduct(*p), nil
		}
	case enums.CatalogKindCard:
		if c := s.cards.LoadByID(ctx, id); c != nil {
			return FromCard(*c), nil
		}
	default:
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown catalog kind")
	}
	return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, kind.String()+" not found")
}
