package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// DefaultBackupKey is the local storage key of the legacy order log.
const DefaultBackupKey = "phool_orders_backup"

// BackupEntry is one row of the legacy order log, in the same shape the
// spreadsheet receives.
type BackupEntry struct {
	Timestamp         string `json:"timestamp"`
	OrderID           string `json:"orderId,omitempty"`
	OrderType         string `json:"orderType"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	Products          string `json:"products"`
	Quantity          string `json:"quantity"`
	PaymentMethod     string `json:"paymentMethod"`
	Notes             string `json:"notes"`
	Status            string `json:"status"`
	CustomDescription string `json:"customDescription"`
	CustomColors      string `json:"customColors"`
	CustomTimeline    string `json:"customTimeline"`
	Error             string `json:"error,omitempty"`
}

// EntryFromOrder snapshots order at the given time.
func EntryFromOrder(order models.Order, at time.Time) BackupEntry {
	status := order.Status
	if !status.IsValid() {
		status = enums.OrderStatusUnderProcess
	}
	return BackupEntry{
		Timestamp:         at.UTC().Format(time.RFC3339Nano),
		OrderID:           order.OrderID,
		OrderType:         order.OrderType.String(),
		Name:              order.Name,
		Email:             order.Email,
		Phone:             order.Phone,
		Address:           order.Address,
		Products:          order.Products,
		Quantity:          order.Quantity,
		PaymentMethod:     order.PaymentMethod,
		Notes:             order.Notes,
		Status:            status.String(),
		CustomDescription: order.CustomDescription,
		CustomColors:      order.CustomColors,
		CustomTimeline:    order.CustomTimeline,
	}
}

// BackupLog is an append-only audit trail kept in local storage for orders
// that did not fully reach the remote store or the spreadsheet. It is never
// replayed into the store.
type BackupLog struct {
	store localstore.Store
	key   string
	logg  *logger.Logger

	mu sync.Mutex
}

// NewBackupLog builds a log under key.
func NewBackupLog(store localstore.Store, key string, logg *logger.Logger) *BackupLog {
	if key == "" {
		key = DefaultBackupKey
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &BackupLog{store: store, key: key, logg: logg}
}

// Append adds entry to the log. Failures are logged and reported as false.
// When the stored log cannot be read nothing is written, so a transient read
// error never replaces the trail.
func (b *BackupLog) Append(ctx context.Context, entry BackupEntry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read(ctx)
	if errors.Is(err, errCorruptBackup) {
		if !b.quarantine(ctx) {
			return false
		}
		entries, err = []BackupEntry{}, nil
	}
	if err != nil {
		b.logg.Error(b.logg.WithOrderID(ctx, entry.OrderID), "orders.backup_read_failed", err)
		return false
	}

	entries = append(entries, entry)
	payload, err := json.Marshal(entries)
	if err != nil {
		b.logg.Error(ctx, "orders.backup_encode_failed", err)
		return false
	}
	if err := b.store.Set(ctx, b.key, payload); err != nil {
		b.logg.Error(b.logg.WithOrderID(ctx, entry.OrderID), "orders.backup_write_failed", err)
		return false
	}
	return true
}

// List returns every logged entry in append order. A corrupt log reads as
// empty; its raw bytes are moved aside on the next Append.
func (b *BackupLog) List(ctx context.Context) ([]BackupEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read(ctx)
	if errors.Is(err, errCorruptBackup) {
		b.logg.Warn(b.logg.WithField(ctx, "key", b.key), "orders.backup_corrupt")
		return []BackupEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear drops the whole log, including any quarantined corrupt copy.
func (b *BackupLog) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return multierr.Combine(
		b.store.Delete(ctx, b.key),
		b.store.Delete(ctx, b.corruptKey()),
	)
}

var errCorruptBackup = errors.New("backup log is not a JSON array")

func (b *BackupLog) read(ctx context.Context) ([]BackupEntry, error) {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("read backup log: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []BackupEntry{}, nil
	}
	var entries []BackupEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptBackup, err)
	}
	return entries, nil
}

func (b *BackupLog) corruptKey() string {
	return b.key + ".corrupt"
}

// quarantine copies the unreadable log under corruptKey before a fresh one
// starts. Callers hold mu.
func (b *BackupLog) quarantine(ctx context.Context) bool {
	ctx = b.logg.WithField(ctx, "key", b.key)
	raw, _, err := b.store.Get(ctx, b.key)
	if err == nil {
		err = b.store.Set(ctx, b.corruptKey(), raw)
	}
	if err != nil {
		b.logg.Error(ctx, "orders.backup_quarantine_failed", err)
		return false
	}
	b.logg.Warn(ctx, "orders.backup_corrupt_quarantined")
	return true
}
