package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

type fakeCatalogAdmin struct {
	created  catalog.CreateInput
	uploaded []byte
	filename string
}

func (f *fakeCatalogAdmin) List(context.Context) []models.Product { return []models.Product{} }

func (f *fakeCatalogAdmin) Get(_ context.Context, id int64) (*models.Product, error) {
	if id != 7 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	p := models.Product{}
	p.ID = id
	return &p, nil
}

func (f *fakeCatalogAdmin) Create(_ context.Context, in catalog.CreateInput) (*models.Product, error) {
	f.created = in
	p := models.Product{}
	p.ID = 7
	p.Name = in.Name
	return &p, nil
}

func (f *fakeCatalogAdmin) Update(ctx context.Context, id int64, _ catalog.UpdateInput) (*models.Product, error) {
	return f.Get(ctx, id)
}

func (f *fakeCatalogAdmin) Delete(context.Context, int64) error { return nil }

func (f *fakeCatalogAdmin) UploadImage(ctx context.Context, id int64, filename string, data []byte) (*models.Product, error) {
	f.filename = filename
	f.uploaded = data
	return f.Get(ctx, id)
}

func (f *fakeCatalogAdmin) DeleteImage(ctx context.Context, id int64, _ string) (*models.Product, error) {
	return f.Get(ctx, id)
}

func multipartImage(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func uploadRouter(svc CatalogAdmin[models.Product], maxBytes int64) http.Handler {
	r := chi.NewRouter()
	r.Post("/products/{id}/images", AdminUploadCatalogImage[models.Product](svc, maxBytes, logger.Nop()))
	return r
}

func TestAdminUploadCatalogImage(t *testing.T) {
	svc := &fakeCatalogAdmin{}
	body, contentType := multipartImage(t, imageFormField, "rose.jpg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/products/7/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	uploadRouter(svc, 1<<20).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "rose.jpg", svc.filename)
	assert.Equal(t, []byte("jpeg-bytes"), svc.uploaded)
}

func TestAdminUploadCatalogImageTooLarge(t *testing.T) {
	svc := &fakeCatalogAdmin{}
	body, contentType := multipartImage(t, imageFormField, "huge.jpg", bytes.Repeat([]byte("x"), 200<<10))
	req := httptest.NewRequest(http.MethodPost, "/products/7/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	uploadRouter(svc, 1024).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, svc.uploaded)
}

func TestAdminUploadCatalogImageMissingField(t *testing.T) {
	svc := &fakeCatalogAdmin{}
	body, contentType := multipartImage(t, "file", "rose.jpg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/products/7/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	uploadRouter(svc, 1<<20).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCreateCatalogMergesCategories(t *testing.T) {
	svc := &fakeCatalogAdmin{}
	payload := `{"name":"Tulip","price":800,"category":"Flowers","categories":["Gifts","flowers"]}`
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()

	AdminCreateCatalog[models.Product](svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Flowers", "Gifts"}, svc.created.Categories)
	assert.True(t, svc.created.InStock)
}

func TestAdminCreateCatalogRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"name":"Tulip","price":1,"colour":"red"}`))
	rec := httptest.NewRecorder()

	AdminCreateCatalog[models.Product](&fakeCatalogAdmin{}, logger.Nop()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseCatalogFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalog?q=+rose+&category=Flowers&stock=inStock&sort=priceDesc&min_price=100&max_price=-5", nil)

	filter, err := parseCatalogFilter(req)

	require.NoError(t, err)
	assert.Equal(t, "rose", filter.SearchText)
	assert.Equal(t, "Flowers", filter.Category)
	assert.Equal(t, enums.StockFilterInStock, filter.Stock)
	assert.Equal(t, enums.SortOrderPriceDesc, filter.Sort)
	assert.EqualValues(t, 100, filter.MinPrice)
	assert.EqualValues(t, 0, filter.MaxPrice)
}

func TestParseCatalogFilterRejectsUnknownStock(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalog?stock=sold", nil)

	_, err := parseCatalogFilter(req)

	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), ReadinessCheck{Name: "db", Pinger: up}, ReadinessCheck{Name: "redis"}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var ok struct {
		Data struct {
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, map[string]string{"db": "up"}, ok.Data.Checks)

	rec = httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), ReadinessCheck{Name: "db", Pinger: down}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
