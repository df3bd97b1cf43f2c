package controllers

import (
	"net/http"

	"github.com/phoolcraft/phool-backend/api/middleware"
	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	"github.com/phoolcraft/phool-backend/internal/basket"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

func basketIDOrError(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	basketID := middleware.BasketIDFromContext(r.Context())
	if basketID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "basket id missing"))
		return "", false
	}
	return basketID, true
}

func parseKind(raw string) (enums.CatalogKind, error) {
	switch enums.CatalogKind(raw) {
	case "", enums.CatalogKindProduct:
		return enums.CatalogKindProduct, nil
	case enums.CatalogKindCard:
		return enums.CatalogKindCard, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid kind").
		WithDetails(map[string]any{"field": "kind", "allowed": []string{"product", "card"}})
}

func GetBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.Get(r.Context(), basketID))
	}
}

type addBasketItemRequest struct {
	ID         int64  `json:"id" validate:"required,gt=0"`
	Kind       string `json:"kind"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=99"`
	CustomText string `json:"custom_text"`
}

func AddBasketItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		var payload addBasketItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := parseKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Add(r.Context(), basketID, basket.AddInput{
			Kind:       kind,
			ID:         payload.ID,
			Quantity:   payload.Quantity,
			CustomText: payload.CustomText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updateBasketItemRequest struct {
	Kind       string `json:"kind"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=99"`
	CustomText string `json:"custom_text"`
}

// UpdateBasketItem sets a line's quantity. The line is identified by the
// path id plus kind and custom text from the body.
func UpdateBasketItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateBasketItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := parseKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.UpdateQuantity(r.Context(), basketID, basket.Key{
			Kind:       kind,
			ID:         id,
			CustomText: payload.CustomText,
		}, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// RemoveBasketItem drops one line. Kind and custom text come from the
// query string since DELETE carries no body.
func RemoveBasketItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := parseKind(r.URL.Query().Get("kind"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := svc.Remove(r.Context(), basketID, basket.Key{
			Kind:       kind,
			ID:         id,
			CustomText: r.URL.Query().Get("custom_text"),
		})
		responses.WriteSuccess(w, view)
	}
}

func ClearBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.Clear(r.Context(), basketID))
	}
}
