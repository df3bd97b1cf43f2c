// Package catalog is the combined product and card view used by the shop
// pages: a shared projection of both tables plus the pure search, filter
// and sort functions applied to it.
package catalog

import (
	"time"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

// Item is the projection both products and cards satisfy. Kind tells the
// two apart since ids are only unique within a table.
type Item struct {
	Kind        enums.CatalogKind `json:"kind"`
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Price       int64             `json:"price"`
	Category    string            `json:"category"`
	Images      []string          `json:"images"`
	Description string            `json:"description"`
	InStock     bool              `json:"in_stock"`
	IsCustom    bool              `json:"is_custom"`
	CreatedAt   time.Time         `json:"created_at"`
}

func fromFields(kind enums.CatalogKind, f models.CatalogFields) Item {
	return Item{
		Kind:        kind,
		ID:          f.ID,
		Name:        f.Name,
		Price:       f.Price,
		Category:    f.Category,
		Images:      types.NormalizeImages(f.Images),
		Description: f.Description,
		InStock:     f.InStock,
		IsCustom:    f.IsCustom,
		CreatedAt:   f.CreatedAt,
	}
}

// FromProduct projects a product row.
func FromProduct(p models.Product) Item {
	return fromFields(enums.CatalogKindProduct, p.CatalogFields)
}

// FromCard projects a card row.
func FromCard(c models.Card) Item {
	return fromFields(enums.CatalogKindCard, c.CatalogFields)
}

// Thumbnail is the first image, or "" when there is none.
func (i Item) Thumbnail() string {
	return types.ImageList(i.Images).First()
}

// Combine projects products followed by cards, keeping each table's order.
func Combine(products []models.Product, cards []models.Card) []Item {
	out := make([]Item, 0, len(products)+len(cards))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	for _, c := range cards {
		out = append(out, FromCard(c))
	}
	return out
}
