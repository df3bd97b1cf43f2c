package orders

import (
	"context"
	"strings"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// Service exposes order tracking for customers and order management for
// admins.
type Service interface {
	Track(ctx context.Context, query TrackQuery) ([]models.Order, error)
	ListAll(ctx context.Context) []models.Order
	SetStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	Delete(ctx context.Context, orderID string) error
	Backups(ctx context.Context) ([]BackupEntry, error)
	ClearBackups(ctx context.Context) error
}

// TrackQuery looks orders up by order id or by email. OrderID wins when
// both are set.
type TrackQuery struct {
	OrderID string
	Email   string
}

type service struct {
	repo   Repository
	backup *BackupLog
	logg   *logger.Logger
}

// NewService builds the order service. backup may be nil.
func NewService(repo Repository, backup *BackupLog, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, backup: backup, logg: logg}, nil
}

func (s *service) Track(ctx context.Context, query TrackQuery) ([]models.Order, error) {
	if id := strings.TrimSpace(query.OrderID); id != "" {
		return s.repo.SearchByOrderID(ctx, id), nil
	}
	if email := NormalizeEmail(query.Email); email != "" {
		return s.repo.ListByEmail(ctx, email), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id or email is required")
}

func (s *service) ListAll(ctx context.Context) []models.Order {
	return s.repo.ListAll(ctx)
}

// SetStatus writes status over whatever the order currently carries. Every
// status is settable from every other.
func (s *service) SetStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"allowed": enums.OrderStatuses()})
	}

	ctx = s.logg.WithOrderID(ctx, orderID)
	rows := s.repo.UpdateStatus(ctx, orderID, next)
	if rows == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not update order status")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	updated := rows[0]
	s.logg.Info(s.logg.WithField(ctx, "status", next.String()), "orders.status_updated")
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}
	switch n := s.repo.DeleteByOrderID(ctx, orderID); {
	case n < 0:
		return pkgerrors.New(pkgerrors.CodeDependency, "could not delete order")
	case n == 0:
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *service) Backups(ctx context.Context) ([]BackupEntry, error) {
	if s.backup == nil {
		return []BackupEntry{}, nil
	}
	entries, err := s.backup.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order backup log unavailable")
	}
	return entries, nil
}

func (s *service) ClearBackups(ctx context.Context) error {
	if s.backup == nil {
		return nil
	}
	if err := s.backup.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear order backup log")
	}
	s.logg.Info(ctx, "orders.backup_cleared")
	return nil
}
