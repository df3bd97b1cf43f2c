package orders

import (
	"context"
	"strings"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

const entity = "orders"

type repository struct {
	table remote.Table[models.Order]
	logg  *logger.Logger
}

// NewRepository builds an orders repository bound to the provided table.
func NewRepository(table remote.Table[models.Order], logg *logger.Logger) Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &repository{table: table, logg: logg}
}

func (r *repository) fail(ctx context.Context, op string, err error) {
	ctx = r.logg.WithFields(r.logg.WithEntity(ctx, entity), map[string]any{"op": op})
	r.logg.Error(ctx, "repository.remote_failed", err)
}

func (r *repository) Create(ctx context.Context, order models.Order) *models.Order {
	created, err := r.table.Insert(ctx, &order)
	if err != nil {
		r.fail(r.logg.WithOrderID(ctx, order.OrderID), "create", err)
		return nil
	}
	return created
}

func (r *repository) ListAll(ctx context.Context) []models.Order {
	rows, err := r.table.SelectAll(ctx)
	if err != nil {
		r.fail(ctx, "list_all", err)
		return []models.Order{}
	}
	return rows
}

// SearchByOrderID matches order ids containing the upper-cased query.
func (r *repository) SearchByOrderID(ctx context.Context, query string) []models.Order {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return []models.Order{}
	}
	rows, err := r.table.SelectWhere(ctx, remote.ContainsFold("order_id", q))
	if err != nil {
		r.fail(ctx, "search_by_order_id", err)
		return []models.Order{}
	}
	return rows
}

// ListByEmail matches the trimmed, lower-cased email exactly.
func (r *repository) ListByEmail(ctx context.Context, email string) []models.Order {
	e := NormalizeEmail(email)
	if e == "" {
		return []models.Order{}
	}
	rows, err := r.table.SelectWhere(ctx, remote.Eq("email", e))
	if err != nil {
		r.fail(ctx, "list_by_email", err)
		return []models.Order{}
	}
	return rows
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) []models.Order {
	rows, err := r.table.UpdateWhere(ctx, remote.Patch{"status": status}, remote.Eq("order_id", orderID))
	if err != nil {
		r.fail(r.logg.WithOrderID(ctx, orderID), "update_status", err)
		return nil
	}
	return rows
}

func (r *repository) DeleteByOrderID(ctx context.Context, orderID string) int64 {
	n, err := r.table.DeleteWhere(ctx, remote.Eq("order_id", orderID))
	if err != nil {
		r.fail(r.logg.WithOrderID(ctx, orderID), "delete", err)
		return -1
	}
	return n
}

// NormalizeEmail is the stored and queried form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
