package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	"github.com/phoolcraft/phool-backend/internal/catalog"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

// imageFormField is the multipart field carrying an uploaded image.
const imageFormField = "image"

// CatalogAdmin is the write surface shared by the product and card managers.
type CatalogAdmin[T any] interface {
	List(ctx context.Context) []T
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, in catalog.CreateInput) (*T, error)
	Update(ctx context.Context, id int64, in catalog.UpdateInput) (*T, error)
	Delete(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, id int64, filename string, data []byte) (*T, error)
	DeleteImage(ctx context.Context, id int64, url string) (*T, error)
}

type catalogCreateRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Price       *int64   `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category"`
	Categories  []string `json:"categories"`
	Images      []string `json:"images"`
	Description string   `json:"description" validate:"max=5000"`
	InStock     *bool    `json:"in_stock"`
	IsCustom    bool     `json:"is_custom"`
}

func (r catalogCreateRequest) toInput() catalog.CreateInput {
	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}
	return catalog.CreateInput{
		Name:        r.Name,
		Price:       *r.Price,
		Categories:  mergeCategories(r.Category, r.Categories),
		Images:      r.Images,
		Description: r.Description,
		InStock:     inStock,
		IsCustom:    r.IsCustom,
	}
}

type catalogUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Price       *int64   `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Categories  []string `json:"categories"`
	Images      []string `json:"images"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	InStock     *bool    `json:"in_stock"`
	IsCustom    *bool    `json:"is_custom"`
}

func (r catalogUpdateRequest) toInput() catalog.UpdateInput {
	in := catalog.UpdateInput{
		Name:        r.Name,
		Price:       r.Price,
		Images:      r.Images,
		Description: r.Description,
		InStock:     r.InStock,
		IsCustom:    r.IsCustom,
	}
	if r.Category != nil || r.Categories != nil {
		raw := ""
		if r.Category != nil {
			raw = *r.Category
		}
		in.Categories = mergeCategories(raw, r.Categories)
	}
	return in
}

// mergeCategories accepts either the comma separated column form or a list.
func mergeCategories(raw string, list []string) []string {
	return types.ParseCategories(strings.Join(append([]string{raw}, list...), ","))
}

type deleteImageRequest struct {
	URL string `json:"url" validate:"required"`
}

func AdminListCatalog[T any](svc CatalogAdmin[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.List(r.Context()))
	}
}

func AdminGetCatalog[T any](svc CatalogAdmin[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AdminCreateCatalog[T any](svc CatalogAdmin[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

func AdminUpdateCatalog[T any](svc CatalogAdmin[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload catalogUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AdminDeleteCatalog[T any](svc CatalogAdmin[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminUploadCatalogImage accepts a multipart upload in the "image" field.
// maxBytes bounds the request body; zero leaves it unbounded.
func AdminUploadCatalogImage[T any](svc CatalogAdmin[T], maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if maxBytes > 0 {
			// headroom for the multipart envelope
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
		}

		file, header, err := r.FormFile(imageFormField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "image exceeds upload limit"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required").
				WithDetails(map[string]any{"field": imageFormField}))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image"))
			return
		}

		row, err := svc.UploadImage(r.Context(), id, header.Filename, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

func AdminDeleteCatalogImage[T any](svc CatalogAdmin[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deleteImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.DeleteImage(r.Context(), id, payload.URL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
