package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	retryBase      = 250 * time.Millisecond
	maxRetries     = 2
)

// SheetsFailureError is written to the backup log when the row did not
// reach the spreadsheet.
const SheetsFailureError = "Failed to sync to Google Sheets"

type emailSender interface {
	Send(ctx context.Context, params map[string]string) error
}

type rowAppender interface {
	AppendRow(ctx context.Context, row orders.BackupEntry) error
}

type backupWriter interface {
	Append(ctx context.Context, entry orders.BackupEntry) bool
}

// Params groups the Notifier's collaborators. Email and Sheets may be nil
// to disable a channel.
type Params struct {
	Email   emailSender
	Sheets  rowAppender
	Backup  backupWriter
	Timeout time.Duration
	Logger  *logger.Logger
	Metrics *metrics.NotifyMetrics
}

// Notifier fans an order out to the configured side channels.
type Notifier struct {
	email   emailSender
	sheets  rowAppender
	backup  backupWriter
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.NotifyMetrics

	wg sync.WaitGroup
}

// NewNotifier builds a Notifier.
func NewNotifier(p Params) *Notifier {
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	n := &Notifier{
		backup:  p.Backup,
		timeout: p.Timeout,
		logg:    p.Logger,
		metrics: p.Metrics,
	}
	// typed nils from disabled clients count as absent
	if c, ok := p.Email.(*EmailJSClient); !ok || c != nil {
		n.email = p.Email
	}
	if c, ok := p.Sheets.(*SheetsClient); !ok || c != nil {
		n.sheets = p.Sheets
	}
	return n
}

// OrderPlaced delivers the confirmation mail and the sheet row in the
// background. It returns immediately.
func (n *Notifier) OrderPlaced(ctx context.Context, order models.Order, row orders.BackupEntry) {
	ctx = n.logg.WithOrderID(context.WithoutCancel(ctx), order.OrderID)

	if n.email != nil && order.Email != "" {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			_ = n.deliver(ctx, ChannelEmail, func(ctx context.Context) error {
				return n.email.Send(ctx, ConfirmationParams(order))
			})
		}()
	}

	if n.sheets != nil {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			err := n.deliver(ctx, ChannelSheets, func(ctx context.Context) error {
				return n.sheets.AppendRow(ctx, row)
			})
			if err != nil && n.backup != nil {
				row.Error = SheetsFailureError
				n.backup.Append(ctx, row)
			}
		}()
	}
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) deliver(ctx context.Context, channel string, send func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := send(ctx)
		var status *StatusError
		if err != nil && (!errors.As(err, &status) || status.Retryable()) {
			return retry.RetryableError(err)
		}
		return err
	})

	logCtx := n.logg.WithField(ctx, "channel", channel)
	if err != nil {
		n.metrics.IncFailed(channel)
		n.logg.Error(logCtx, "notifications.delivery_failed", err)
		return err
	}
	n.metrics.IncSent(channel)
	n.logg.Debug(logCtx, "notifications.delivered")
	return nil
}
