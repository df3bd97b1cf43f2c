package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoolcraft/phool-backend/internal/basket"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
)

var sampleLines = []basket.Line{
	{ID: 1, Name: "Rose Bouquet", Price: 35, Quantity: 2},
	{ID: 2, Name: "Sunflower Blanket", Price: 85, Quantity: 1},
}

func TestPriceWithoutExtras(t *testing.T) {
	totals, err := Price(sampleLines, nil, "", false, 150)
	require.NoError(t, err)
	assert.Equal(t, Totals{Subtotal: 155, Total: 155}, totals)
}

func TestPricePromoAndGiftWrap(t *testing.T) {
	promos := NewPromoTable(map[string]int{"phool10": 10, "free": 150, " ": 5})
	assert.Equal(t, PromoTable{"PHOOL10": 10, "FREE": 100}, promos)

	totals, err := Price(sampleLines, promos, " Phool10 ", true, 150)
	require.NoError(t, err)
	require.NotNil(t, totals.PromoCode)
	assert.Equal(t, "PHOOL10", *totals.PromoCode)
	// 15.5 rounds half up
	assert.Equal(t, int64(16), totals.Discount)
	assert.Equal(t, int64(150), totals.GiftWrapCost)
	assert.Equal(t, int64(155-16+150), totals.Total)

	totals, err = Price(sampleLines, promos, "free", false, 150)
	require.NoError(t, err)
	assert.Zero(t, totals.Total)
}

func TestPriceUnknownPromo(t *testing.T) {
	_, err := Price(sampleLines, PromoTable{"PHOOL10": 10}, "SPRING", false, 0)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
