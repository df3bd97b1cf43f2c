package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phoolcraft/phool-backend/internal/basket"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
)

// Totals is the price breakdown of a checkout. All amounts are whole PKR.
type Totals struct {
	Subtotal     int64   `json:"subtotal"`
	Discount     int64   `json:"discount"`
	GiftWrapCost int64   `json:"gift_wrap_cost"`
	Total        int64   `json:"total"`
	PromoCode    *string `json:"promo_code"`
}

// PromoTable maps upper-case promo codes to a percentage off the subtotal.
type PromoTable map[string]int

// NewPromoTable upper-cases codes and clamps percentages to 0..100.
func NewPromoTable(raw map[string]int) PromoTable {
	table := make(PromoTable, len(raw))
	for code, pct := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		table[code] = min(max(pct, 0), 100)
	}
	return table
}

// Lookup returns the canonical code and its percentage.
func (t PromoTable) Lookup(code string) (string, int, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	pct, ok := t[code]
	return code, pct, ok
}

// Price computes the totals for lines. A blank promo code means none; an
// unknown one is a validation error. The discount is rounded half up to a
// whole rupee and total = subtotal - discount + gift wrap.
func Price(lines []basket.Line, promos PromoTable, promoCode string, giftWrap bool, giftWrapCost int64) (Totals, error) {
	totals := Totals{Subtotal: basket.TotalPrice(lines)}

	if strings.TrimSpace(promoCode) != "" {
		code, pct, ok := promos.Lookup(promoCode)
		if !ok {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid promo code").
				WithDetails(map[string]any{"promo_code": code})
		}
		totals.PromoCode = &code
		totals.Discount = decimal.NewFromInt(totals.Subtotal).
			Mul(decimal.NewFromInt(int64(pct))).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}
	if giftWrap {
		totals.GiftWrapCost = giftWrapCost
	}
	totals.Total = totals.Subtotal - totals.Discount + totals.GiftWrapCost
	return totals, nil
}
