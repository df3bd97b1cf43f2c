// Package orders stores customer orders and custom-order inquiries. Orders
// bypass the repository cache: every read goes to the store, and failures
// degrade to empty results instead of errors.
package orders

import (
	"context"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	Create(ctx context.Context, order models.Order) *models.Order
	ListAll(ctx context.Context) []models.Order
	SearchByOrderID(ctx context.Context, query string) []models.Order
	ListByEmail(ctx context.Context, email string) []models.Order
	// UpdateStatus returns the rows that now carry status, or nil on failure.
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) []models.Order
	// DeleteByOrderID reports how many rows were removed, or -1 on failure.
	DeleteByOrderID(ctx context.Context, orderID string) int64
}
