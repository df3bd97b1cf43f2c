package controllers

import (
	"net/http"

	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

const maxSearchLength = 100

// ListCatalog serves the shop listing: products and cards combined, then
// filtered by q, category, stock and price bounds and sorted.
func ListCatalog(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := parseCatalogFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := svc.List(r.Context(), filter)
		responses.WriteSuccess(w, map[string]any{
			"items": items,
			"total": len(items),
		})
	}
}

func parseCatalogFilter(r *http.Request) (catalog.Filter, error) {
	query := r.URL.Query()

	stock, err := enums.ParseStockFilter(query.Get("stock"))
	if err != nil {
		return catalog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock filter").
			WithDetails(map[string]any{"field": "stock"})
	}
	sortOrder, err := enums.ParseSortOrder(query.Get("sort"))
	if err != nil {
		return catalog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort order").
			WithDetails(map[string]any{"field": "sort"})
	}
	minPrice, err := validators.ParseQueryPrice(r, "min_price")
	if err != nil {
		return catalog.Filter{}, err
	}
	maxPrice, err := validators.ParseQueryPrice(r, "max_price")
	if err != nil {
		return catalog.Filter{}, err
	}

	return catalog.Filter{
		SearchText: validators.SanitizeString(query.Get("q"), maxSearchLength),
		Category:   validators.SanitizeString(query.Get("category"), maxSearchLength),
		Stock:      stock,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       sortOrder,
	}, nil
}

// ListCategories returns every category tag in use across the catalog.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Categories(r.Context()))
	}
}

// GetCatalogItem serves one product or card by id.
func GetCatalogItem(svc catalog.Service, kind enums.CatalogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), kind, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
