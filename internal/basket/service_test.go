package basket

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
)

type stubCatalog map[enums.CatalogKind]map[int64]catalog.Item

func (s stubCatalog) Get(_ context.Context, kind enums.CatalogKind, id int64) (catalog.Item, error) {
	if item, ok := s[kind][id]; ok {
		return item, nil
	}
	return catalog.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "not found")
}

func newBasketService(t *testing.T) (Service, *localstore.Memory) {
	t.Helper()
	kv := localstore.NewMemory()
	items := stubCatalog{
		enums.CatalogKindProduct: {
			1: {Kind: enums.CatalogKindProduct, ID: 1, Name: "Rose Bouquet", Price: 35, Images: []string{"🌹", "https://cdn.phool.pk/rose.jpg"}, InStock: true},
			6: {Kind: enums.CatalogKindProduct, ID: 6, Name: "Baby Whale", Price: 30, InStock: false},
		},
		enums.CatalogKindCard: {
			1: {Kind: enums.CatalogKindCard, ID: 1, Name: "Eid Card", Price: 8, InStock: true, IsCustom: true},
		},
	}
	svc, err := NewService(NewManager(kv, "", nil), items, nil)
	require.NoError(t, err)
	return svc, kv
}

func TestServiceAddCapturesCatalogFields(t *testing.T) {
	svc, kv := newBasketService(t)
	ctx := context.Background()

	v, err := svc.Add(ctx, "b1", AddInput{ID: 1, Quantity: 2, CustomText: "ignored"})
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, Line{ID: 1, Kind: enums.CatalogKindProduct, Name: "Rose Bouquet", Price: 35, Quantity: 2, Image: "🌹"}, v.Lines[0])

	v, err = svc.Add(ctx, "b1", AddInput{Kind: enums.CatalogKindCard, ID: 1, CustomText: " Eid Mubarak "})
	require.NoError(t, err)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "Eid Mubarak", v.Lines[1].CustomText)
	assert.Equal(t, 3, v.TotalItems)
	assert.Equal(t, int64(78), v.TotalPrice)

	_, ok, err := kv.Get(ctx, "phool_cart_v1:b1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, svc.Get(ctx, "b2").Lines)
}

func TestServiceAddRejects(t *testing.T) {
	svc, _ := newBasketService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "b1", AddInput{ID: 6})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	_, err = svc.Add(ctx, "b1", AddInput{ID: 99})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Add(ctx, "b1", AddInput{Kind: enums.CatalogKindCard, ID: 1, CustomText: "  "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = svc.Add(ctx, "b1", AddInput{Kind: enums.CatalogKindCard, ID: 1, CustomText: strings.Repeat("a", 151)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestServiceQuantityRemoveClear(t *testing.T) {
	svc, _ := newBasketService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "b1", AddInput{ID: 1, Quantity: 3})
	require.NoError(t, err)

	v, err := svc.UpdateQuantity(ctx, "b1", Key{ID: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v.TotalItems)

	_, err = svc.UpdateQuantity(ctx, "b1", Key{ID: 2}, 4)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	v = svc.Remove(ctx, "b1", Key{ID: 1})
	assert.Empty(t, v.Lines)

	_, err = svc.Add(ctx, "b1", AddInput{ID: 1})
	require.NoError(t, err)
	v = svc.Clear(ctx, "b1")
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.TotalPrice)
}

func TestServiceAddressesLinesByTrimmedCustomText(t *testing.T) {
	svc, _ := newBasketService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "b1", AddInput{Kind: enums.CatalogKindCard, ID: 1, CustomText: "  Hi"})
	require.NoError(t, err)

	v, err := svc.UpdateQuantity(ctx, "b1", Key{Kind: enums.CatalogKindCard, ID: 1, CustomText: "  Hi"}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v.TotalItems)

	v = svc.Remove(ctx, "b1", Key{Kind: enums.CatalogKindCard, ID: 1, CustomText: "Hi  "})
	assert.Empty(t, v.Lines)
}
