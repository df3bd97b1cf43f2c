package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phoolcraft/phool-backend/api/middleware"
	"github.com/phoolcraft/phool-backend/internal/basket"
	"github.com/phoolcraft/phool-backend/internal/cards"
	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/internal/checkout"
	"github.com/phoolcraft/phool-backend/internal/fundraisers"
	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/internal/products"
	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/reviews"
	pkgAuth "github.com/phoolcraft/phool-backend/pkg/auth"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/security"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

const (
	adminEmail    = "owner@phool.pk"
	adminPassword = "crochet-all-day"
)

type testServer struct {
	handler http.Handler
	cfg     *config.Config
	product models.Product
	card    models.Card
	backup  *orders.BackupLog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logg := logger.Nop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.Card{}, &models.Fundraiser{}, &models.Review{}, &models.Order{}))

	hash, err := security.HashPassword(adminPassword, config.PasswordConfig{
		ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		JWT:     config.JWTConfig{Secret: "test-secret", Issuer: "phool", ExpirationMinutes: 60},
		Admin:   config.AdminConfig{Email: adminEmail, PasswordHash: hash},
		Storage: config.StorageConfig{MaxUploadMB: 1},
	}

	store := remote.NewGormStore(conn, nil)
	kv := localstore.NewMemory()

	productRepo := products.NewRepository(store.Products, time.Minute, logg, nil)
	cardRepo := cards.NewRepository(store.Cards, time.Minute, logg, nil)
	productSvc, err := products.NewService(productRepo, store.Blobs, cfg.Storage, logg)
	require.NoError(t, err)
	cardSvc, err := cards.NewService(cardRepo, store.Blobs, cfg.Storage, logg)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(productRepo, cardRepo)
	require.NoError(t, err)
	fundraiserSvc, err := fundraisers.NewService(fundraisers.NewRepository(store.Fundraisers, time.Minute, logg, nil))
	require.NoError(t, err)
	reviewSvc, err := reviews.NewService(reviews.NewRepository(store.Reviews, time.Minute, logg, nil), productRepo)
	require.NoError(t, err)
	basketSvc, err := basket.NewService(basket.NewManager(kv, basket.DefaultStorageKey, logg), catalogSvc, logg)
	require.NoError(t, err)

	orderRepo := orders.NewRepository(store.Orders, logg)
	backup := orders.NewBackupLog(kv, orders.DefaultBackupKey, logg)
	orderSvc, err := orders.NewService(orderRepo, backup, logg)
	require.NoError(t, err)
	checkoutSvc, err := checkout.NewService(checkout.Params{
		Baskets:      basketSvc,
		Orders:       orderRepo,
		Backup:       backup,
		Promos:       checkout.NewPromoTable(map[string]int{"EID10": 10}),
		GiftWrapCost: 150,
		Logger:       logg,
	})
	require.NoError(t, err)

	product, err := productSvc.Create(ctx, catalog.CreateInput{
		Name: "Rose Bouquet", Price: 1200, Categories: []string{"Flowers"}, Images: []string{"🌹"}, InStock: true,
	})
	require.NoError(t, err)
	card, err := cardSvc.Create(ctx, catalog.CreateInput{
		Name: "Eid Card", Price: 300, Categories: []string{"Cards"}, InStock: true, IsCustom: true,
	})
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, Dependencies{
		Catalog:     catalogSvc,
		Products:    productSvc,
		Cards:       cardSvc,
		Fundraisers: fundraiserSvc,
		Reviews:     reviewSvc,
		Baskets:     basketSvc,
		Checkout:    checkoutSvc,
		Orders:      orderSvc,
		Limiter:     middleware.NewMemoryLimiter(),
		LocalStore:  kv,
	})
	return &testServer{handler: handler, cfg: cfg, product: *product, card: *card, backup: backup}
}

type call struct {
	method string
	path   string
	body   any
	header map[string]string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func (s *testServer) adminToken(t *testing.T, role enums.AdminRole) string {
	t.Helper()
	token, err := pkgAuth.MintAdminToken(s.cfg.JWT, time.Now(), pkgAuth.AdminTokenPayload{Subject: adminEmail, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Phool-Env"))
}

func TestCatalogListing(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/catalog?sort=priceAsc"})
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeData[struct {
		Items []catalog.Item `json:"items"`
		Total int            `json:"total"`
	}](t, rec)
	require.Equal(t, 2, listing.Total)
	assert.Equal(t, "Eid Card", listing.Items[0].Name)
	assert.Equal(t, enums.CatalogKindCard, listing.Items[0].Kind)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/catalog?category=flowers&q=rose"})
	listing = decodeData[struct {
		Items []catalog.Item `json:"items"`
		Total int            `json:"total"`
	}](t, rec)
	require.Equal(t, 1, listing.Total)
	assert.Equal(t, s.product.ID, listing.Items[0].ID)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/catalog?sort=cheapest"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/catalog/categories"})
	assert.ElementsMatch(t, []string{"Flowers", "Cards"}, decodeData[[]string](t, rec))
}

func TestGetProductAndCard(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/v1/products/%d", s.product.ID)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rose Bouquet", decodeData[catalog.Item](t, rec).Name)

	rec = s.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/v1/cards/%d", s.card.ID)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/products/9999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/products/abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBasketAndCheckoutFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/basket/items", body: map[string]any{"id": s.product.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	basketID := rec.Header().Get(middleware.BasketIDHeader)
	require.NotEmpty(t, basketID)
	withBasket := map[string]string{middleware.BasketIDHeader: basketID}

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/basket/items", header: withBasket,
		body: map[string]any{"id": s.card.ID, "kind": "card", "custom_text": "Eid Mubarak Ammi"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeData[basket.View](t, rec)
	assert.Equal(t, 3, view.TotalItems)
	assert.EqualValues(t, 2700, view.TotalPrice)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/quote", header: withBasket,
		body: map[string]any{"promo_code": "eid10", "gift_wrap": true}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	totals := decodeData[checkout.Totals](t, rec)
	assert.EqualValues(t, 270, totals.Discount)
	assert.EqualValues(t, 2580, totals.Total)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", header: withBasket, body: map[string]any{
		"name": "Ayesha", "email": "Ayesha@Example.com", "phone": "0300-1234567",
		"address": "House 1, Lahore", "payment_method": "COD", "promo_code": "EID10",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeData[checkout.Result](t, rec)
	assert.True(t, result.Persisted)
	assert.True(t, strings.HasPrefix(result.Order.OrderID, "PHL-"))
	assert.Equal(t, enums.OrderStatusUnderProcess, result.Order.Status)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/basket", header: withBasket})
	assert.Empty(t, decodeData[basket.View](t, rec).Lines)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders/track?email=ayesha@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	tracked := decodeData[[]models.Order](t, rec)
	require.Len(t, tracked, 1)
	assert.Equal(t, result.Order.OrderID, tracked[0].OrderID)

	suffix := strings.ToLower(result.Order.OrderID[len(result.Order.OrderID)-4:])
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders/track?order_id=" + suffix})
	require.Len(t, decodeData[[]models.Order](t, rec), 1)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders/track"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutRejectsEmptyBasket(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", body: map[string]any{
		"name": "Ayesha", "email": "ayesha@example.com", "phone": "0300", "address": "Lahore",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomOrder(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/custom-orders", body: map[string]any{
		"name": "Bilal", "email": "bilal@example.com", "phone": "0321",
		"description": "A crochet cat", "colors": "grey", "timeline": "2 weeks",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeData[checkout.Result](t, rec)
	assert.Equal(t, enums.OrderTypeCustom, result.Order.OrderType)
	assert.Equal(t, enums.OrderStatusQuoteRequest, result.Order.Status)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/basket/items", body: map[string]any{"id": s.product.ID}})
	headers := map[string]string{
		middleware.BasketIDHeader: rec.Header().Get(middleware.BasketIDHeader),
		"Idempotency-Key":         "order-attempt-1",
	}
	body := map[string]any{"name": "Ayesha", "email": "a@example.com", "phone": "0300", "address": "Lahore"}

	first := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", header: headers, body: body})
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", header: headers, body: body})
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestReviewModeration(t *testing.T) {
	s := newTestServer(t)
	reviewsPath := fmt.Sprintf("/api/v1/products/%d/reviews", s.product.ID)

	rec := s.do(t, call{method: http.MethodPost, path: reviewsPath, body: map[string]any{"rating": 9, "comment": "Beautiful work"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decodeData[models.Review](t, rec)
	assert.Equal(t, 5, submitted.Rating)
	assert.Equal(t, "Anonymous", submitted.Name)
	assert.False(t, submitted.Approved)

	rec = s.do(t, call{method: http.MethodGet, path: reviewsPath})
	listed := decodeData[reviewListResponse](t, rec)
	assert.Empty(t, listed.Reviews)
	assert.Nil(t, listed.Summary.Average)

	staff := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleStaff)}
	rec = s.do(t, call{method: http.MethodPatch, path: fmt.Sprintf("/api/v1/admin/reviews/%d", submitted.ID), header: staff,
		body: map[string]any{"approved": true}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: reviewsPath})
	listed = decodeData[reviewListResponse](t, rec)
	require.Len(t, listed.Reviews, 1)
	require.NotNil(t, listed.Summary.Average)
	assert.InDelta(t, 5.0, *listed.Summary.Average, 0.001)
}

type reviewListResponse struct {
	Reviews []models.Review `json:"reviews"`
	Summary struct {
		Average *float64 `json:"average"`
		Count   int      `json:"count"`
	} `json:"summary"`
}

func TestAdminLoginAndAccess(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]any{"email": adminEmail, "password": "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]any{"email": "OWNER@phool.pk", "password": adminPassword}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeData[struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}](t, rec)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "admin", login.Role)
	admin := map[string]string{"Authorization": "Bearer " + login.Token}

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/orders"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/orders", header: admin})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/products", header: admin, body: map[string]any{
		"name": "Tulip", "price": 800, "category": "Flowers, Gifts", "images": []string{"🌷"},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[models.Product](t, rec)
	assert.Equal(t, "Flowers, Gifts", created.Category)
	assert.True(t, created.InStock)
	assert.Equal(t, types.ImageList{"🌷"}, created.Images)

	staff := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleStaff)}
	rec = s.do(t, call{method: http.MethodDelete, path: fmt.Sprintf("/api/v1/admin/products/%d", created.ID), header: staff})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: fmt.Sprintf("/api/v1/admin/products/%d", created.ID), header: admin})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminOrderStatusWorkflow(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/custom-orders", body: map[string]any{
		"name": "Bilal", "email": "bilal@example.com", "phone": "0321", "description": "Keychain",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeData[checkout.Result](t, rec).Order.OrderID

	staff := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleStaff)}
	rec = s.do(t, call{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID, header: staff, body: map[string]any{"status": "Dispatched"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, enums.OrderStatusDispatched, decodeData[models.Order](t, rec).Status)

	rec = s.do(t, call{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID, header: staff, body: map[string]any{"status": "Lost"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/orders/" + orderID, header: staff})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleAdmin)}
	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/orders/" + orderID, header: admin})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/orders/" + orderID, header: admin})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/orders/backups", header: staff})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]orders.BackupEntry](t, rec))
}

func TestAdminClearOrderBackups(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.True(t, s.backup.Append(ctx, orders.BackupEntry{OrderID: "PHL-OLD-0001", Error: "remote store unavailable"}))

	staff := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleStaff)}
	admin := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleAdmin)}

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/orders/backups", header: staff})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeData[[]orders.BackupEntry](t, rec), 1)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/orders/backups"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/orders/backups", header: staff})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/orders/backups", header: admin})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/orders/backups", header: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]orders.BackupEntry](t, rec))
}

func TestFundraisers(t *testing.T) {
	s := newTestServer(t)
	admin := map[string]string{"Authorization": s.adminToken(t, enums.AdminRoleAdmin)}

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/fundraisers", header: admin, body: map[string]any{
		"title": "Flood relief", "goal_pkr": 50000, "active": true, "start_date": "2026-09-01", "end_date": "2026-10-01",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[models.Fundraiser](t, rec)
	assert.Equal(t, "PKR 50000", created.Goal)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/fundraisers", header: admin, body: map[string]any{
		"title": "Draft", "active": false, "start_date": "not-a-date",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/fundraisers"})
	require.Len(t, decodeData[[]models.Fundraiser](t, rec), 1)

	rec = s.do(t, call{method: http.MethodPatch, path: fmt.Sprintf("/api/v1/admin/fundraisers/%d", created.ID), header: admin,
		body: map[string]any{"active": false}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/v1/fundraisers/%d", created.ID)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
