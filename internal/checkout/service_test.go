package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoolcraft/phool-backend/internal/basket"
	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
)

type stubBaskets struct {
	lines   []basket.Line
	cleared bool
}

func (s *stubBaskets) Get(_ context.Context, basketID string) basket.View {
	return basket.View{BasketID: basketID, Lines: s.lines, TotalItems: basket.TotalItems(s.lines), TotalPrice: basket.TotalPrice(s.lines)}
}

func (s *stubBaskets) Clear(_ context.Context, basketID string) basket.View {
	s.lines = nil
	s.cleared = true
	return basket.View{BasketID: basketID}
}

type stubOrders struct {
	orders.Repository
	fail    bool
	created []models.Order
}

func (s *stubOrders) Create(_ context.Context, order models.Order) *models.Order {
	if s.fail {
		return nil
	}
	order.ID = int64(len(s.created) + 1)
	s.created = append(s.created, order)
	return &order
}

type recordingNotifier struct {
	mu   sync.Mutex
	rows []orders.BackupEntry
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, _ models.Order, row orders.BackupEntry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rows = append(n.rows, row)
}

type fixture struct {
	svc      Service
	baskets  *stubBaskets
	orders   *stubOrders
	notifier *recordingNotifier
	backup   *orders.BackupLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		baskets:  &stubBaskets{lines: append([]basket.Line(nil), sampleLines...)},
		orders:   &stubOrders{},
		notifier: &recordingNotifier{},
		backup:   orders.NewBackupLog(localstore.NewMemory(), "", nil),
	}
	svc, err := NewService(Params{
		Baskets:      f.baskets,
		Orders:       f.orders,
		Notifier:     f.notifier,
		Backup:       f.backup,
		Promos:       NewPromoTable(map[string]int{"PHOOL10": 10}),
		GiftWrapCost: 150,
		Now:          func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

var contact = Contact{Name: " Sana ", Email: " Sana@Example.com ", Phone: "0300 1234567", Address: "House 1, Lahore"}

func TestPlaceOrderSnapshotsBasket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.PlaceOrder(ctx, "b1", OrderInput{
		Contact:       contact,
		PaymentMethod: "Cash on Delivery",
		PromoCode:     "phool10",
		GiftWrap:      true,
		GiftMessage:   " For Ammi ",
	})
	require.NoError(t, err)
	assert.True(t, res.Persisted)

	o := res.Order
	assert.Regexp(t, `^PHL-`, o.OrderID)
	assert.Equal(t, "Sana", o.Name)
	assert.Equal(t, "sana@example.com", o.Email)
	assert.Equal(t, enums.OrderTypeRegular, o.OrderType)
	assert.Equal(t, enums.OrderStatusUnderProcess, o.Status)
	assert.Equal(t, "Rose Bouquet x2, Sunflower Blanket x1", o.Products)
	assert.Equal(t, "3", o.Quantity)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, int64(155), o.Subtotal)
	assert.Equal(t, int64(16), o.Discount)
	assert.Equal(t, int64(289), o.Total)
	assert.Equal(t, "For Ammi", o.GiftMessage)

	assert.True(t, f.baskets.cleared)
	require.Len(t, f.notifier.rows, 1)
	assert.Equal(t, "2026-05-01T12:00:00Z", f.notifier.rows[0].Timestamp)
	assert.Empty(t, listBackups(t, f.backup))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, "b1", OrderInput{Contact: Contact{Name: "Sana"}})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"fields": []string{"email", "phone", "address"}}, pkgerrors.As(err).Details())

	_, err = f.svc.PlaceOrder(ctx, "b1", OrderInput{Contact: contact, PromoCode: "NOPE"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.False(t, f.baskets.cleared)

	f.baskets.lines = nil
	_, err = f.svc.PlaceOrder(ctx, "b1", OrderInput{Contact: contact})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, f.orders.created)
}

func TestPlaceOrderFallsBackToBackupLog(t *testing.T) {
	f := newFixture(t)
	f.orders.fail = true
	ctx := context.Background()

	res, err := f.svc.PlaceOrder(ctx, "b1", OrderInput{Contact: contact})
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.Zero(t, res.Order.ID)

	entries := listBackups(t, f.backup)
	require.Len(t, entries, 1)
	assert.Equal(t, RemoteFailureError, entries[0].Error)
	assert.Equal(t, res.Order.OrderID, entries[0].OrderID)
	assert.Equal(t, "Under Process", entries[0].Status)
	assert.Len(t, f.notifier.rows, 1)
	assert.Empty(t, f.notifier.rows[0].Error)
}

func TestRequestCustomOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestCustomOrder(ctx, CustomOrderInput{Contact: contact})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	res, err := f.svc.RequestCustomOrder(ctx, CustomOrderInput{
		Contact:     Contact{Name: "Hina", Email: "hina@example.com", Phone: "0321"},
		Description: "Crochet bouquet of 12 tulips",
		Colors:      "pink, white",
		Timeline:    "2 weeks",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderTypeCustom, res.Order.OrderType)
	assert.Equal(t, enums.OrderStatusQuoteRequest, res.Order.Status)
	assert.Equal(t, "pink, white", res.Order.CustomColors)
	assert.Zero(t, res.Order.Total)
	assert.False(t, f.baskets.cleared)
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	totals, err := f.svc.Quote(context.Background(), "b1", "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(305), totals.Total)
}

func listBackups(t *testing.T, b *orders.BackupLog) []orders.BackupEntry {
	t.Helper()
	entries, err := b.List(context.Background())
	require.NoError(t, err)
	return entries
}
