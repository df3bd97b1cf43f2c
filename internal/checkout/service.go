// Package checkout turns a basket into an order and records custom-order
// quote requests. Order creation never waits on the email or spreadsheet
// side channels.
package checkout

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/phoolcraft/phool-backend/internal/basket"
	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// RemoteFailureError is logged in the backup when the order row could not
// be written.
const RemoteFailureError = "Failed to save order to remote store"

// Contact is the customer's details shared by both order types.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// OrderInput is a regular checkout of the current basket.
type OrderInput struct {
	Contact
	PaymentMethod string
	Notes         string
	PromoCode     string
	GiftWrap      bool
	GiftMessage   string
}

// CustomOrderInput is a quote request for a made-to-order piece.
type CustomOrderInput struct {
	Contact
	Description string
	Colors      string
	Timeline    string
	Notes       string
}

// Result reports the placed order. Persisted is false when the order only
// reached the local backup log.
type Result struct {
	Order     models.Order `json:"order"`
	Persisted bool         `json:"persisted"`
}

type basketService interface {
	Get(ctx context.Context, basketID string) basket.View
	Clear(ctx context.Context, basketID string) basket.View
}

type notifier interface {
	OrderPlaced(ctx context.Context, order models.Order, row orders.BackupEntry)
}

type backupWriter interface {
	Append(ctx context.Context, entry orders.BackupEntry) bool
}

// Service places orders.
type Service interface {
	Quote(ctx context.Context, basketID, promoCode string, giftWrap bool) (Totals, error)
	PlaceOrder(ctx context.Context, basketID string, input OrderInput) (*Result, error)
	RequestCustomOrder(ctx context.Context, input CustomOrderInput) (*Result, error)
}

// Params groups the checkout dependencies. Notifier and Backup may be nil.
type Params struct {
	Baskets      basketService
	Orders       orders.Repository
	IDs          *orders.IDGenerator
	Notifier     notifier
	Backup       backupWriter
	Promos       PromoTable
	GiftWrapCost int64
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	baskets      basketService
	orders       orders.Repository
	ids          *orders.IDGenerator
	notifier     notifier
	backup       backupWriter
	promos       PromoTable
	giftWrapCost int64
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the checkout service.
func NewService(p Params) (Service, error) {
	if p.Baskets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket service is required")
	}
	if p.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if p.IDs == nil {
		p.IDs = orders.NewIDGenerator()
	}
	if p.Promos == nil {
		p.Promos = PromoTable{}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		baskets:      p.Baskets,
		orders:       p.Orders,
		ids:          p.IDs,
		notifier:     p.Notifier,
		backup:       p.Backup,
		promos:       p.Promos,
		giftWrapCost: p.GiftWrapCost,
		logg:         p.Logger,
		now:          p.Now,
	}, nil
}

func (s *service) Quote(ctx context.Context, basketID, promoCode string, giftWrap bool) (Totals, error) {
	view := s.baskets.Get(ctx, basketID)
	return Price(view.Lines, s.promos, promoCode, giftWrap, s.giftWrapCost)
}

func (s *service) PlaceOrder(ctx context.Context, basketID string, input OrderInput) (*Result, error) {
	contact, err := normalizeContact(input.Contact, true)
	if err != nil {
		return nil, err
	}
	view := s.baskets.Get(ctx, basketID)
	if len(view.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
	}
	totals, err := Price(view.Lines, s.promos, input.PromoCode, input.GiftWrap, s.giftWrapCost)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(view.Lines))
	for _, l := range view.Lines {
		items = append(items, models.OrderItem{
			ID:         l.ID,
			Name:       l.Name,
			Price:      l.Price,
			Quantity:   l.Quantity,
			CustomText: l.CustomText,
		})
	}
	giftMessage := ""
	if input.GiftWrap {
		giftMessage = strings.TrimSpace(input.GiftMessage)
	}

	order := models.Order{
		OrderID:       s.ids.Next(),
		Name:          contact.Name,
		Email:         contact.Email,
		Phone:         contact.Phone,
		Address:       contact.Address,
		Products:      DescribeItems(items),
		Quantity:      strconv.Itoa(view.TotalItems),
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Notes:         strings.TrimSpace(input.Notes),
		OrderType:     enums.OrderTypeRegular,
		Status:        enums.InitialOrderStatus(enums.OrderTypeRegular),
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PromoCode:     totals.PromoCode,
		GiftWrap:      input.GiftWrap,
		GiftWrapCost:  totals.GiftWrapCost,
		GiftMessage:   giftMessage,
	}

	result := s.place(ctx, order)
	s.baskets.Clear(ctx, basketID)
	return result, nil
}

func (s *service) RequestCustomOrder(ctx context.Context, input CustomOrderInput) (*Result, error) {
	contact, err := normalizeContact(input.Contact, false)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	order := models.Order{
		OrderID:           s.ids.Next(),
		Name:              contact.Name,
		Email:             contact.Email,
		Phone:             contact.Phone,
		Address:           contact.Address,
		Products:          "Custom order",
		Quantity:          "1",
		Notes:             strings.TrimSpace(input.Notes),
		OrderType:         enums.OrderTypeCustom,
		Status:            enums.InitialOrderStatus(enums.OrderTypeCustom),
		Items:             []models.OrderItem{},
		CustomDescription: description,
		CustomColors:      strings.TrimSpace(input.Colors),
		CustomTimeline:    strings.TrimSpace(input.Timeline),
	}
	return s.place(ctx, order), nil
}

// place writes the order, falling back to the backup log, then notifies.
func (s *service) place(ctx context.Context, order models.Order) *Result {
	ctx = s.logg.WithOrderID(ctx, order.OrderID)
	row := orders.EntryFromOrder(order, s.now())

	result := &Result{Order: order}
	if created := s.orders.Create(ctx, order); created != nil {
		result.Order = *created
		result.Persisted = true
	} else {
		s.logg.Warn(ctx, "checkout.order_not_persisted")
		if s.backup != nil {
			failed := row
			failed.Error = RemoteFailureError
			s.backup.Append(ctx, failed)
		}
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, result.Order, row)
	}
	s.logg.Info(s.logg.WithField(ctx, "order_type", order.OrderType.String()), "checkout.order_placed")
	return result
}

// DescribeItems renders the free-text products column.
func DescribeItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		part := item.Name + " x" + strconv.Itoa(item.Quantity)
		if item.CustomText != "" {
			part += ` ("` + item.CustomText + `")`
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func normalizeContact(c Contact, requireAddress bool) (Contact, error) {
	out := Contact{
		Name:    strings.TrimSpace(c.Name),
		Email:   orders.NormalizeEmail(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
	var missing []string
	if out.Name == "" {
		missing = append(missing, "name")
	}
	if out.Email == "" {
		missing = append(missing, "email")
	}
	if out.Phone == "" {
		missing = append(missing, "phone")
	}
	if requireAddress && out.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return Contact{}, pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return out, nil
}
