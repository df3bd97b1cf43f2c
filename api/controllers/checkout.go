package controllers

import (
	"net/http"

	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	"github.com/phoolcraft/phool-backend/internal/checkout"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

type quoteRequest struct {
	PromoCode string `json:"promo_code" validate:"max=50"`
	GiftWrap  bool   `json:"gift_wrap"`
}

// QuoteCheckout prices the caller's basket without placing an order.
func QuoteCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := svc.Quote(r.Context(), basketID, payload.PromoCode, payload.GiftWrap)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,max=50"`
	Address string `json:"address" validate:"max=1000"`
}

func (c contactRequest) contact() checkout.Contact {
	return checkout.Contact{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

type placeOrderRequest struct {
	contactRequest
	PaymentMethod string `json:"payment_method" validate:"max=50"`
	Notes         string `json:"notes" validate:"max=2000"`
	PromoCode     string `json:"promo_code" validate:"max=50"`
	GiftWrap      bool   `json:"gift_wrap"`
	GiftMessage   string `json:"gift_message" validate:"max=500"`
}

// PlaceOrder checks out the caller's basket. An order that only reached
// the local backup log is still accepted and answered with 202.
func PlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, ok := basketIDOrError(w, r, logg)
		if !ok {
			return
		}
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.PlaceOrder(r.Context(), basketID, checkout.OrderInput{
			Contact:       payload.contact(),
			PaymentMethod: payload.PaymentMethod,
			Notes:         payload.Notes,
			PromoCode:     payload.PromoCode,
			GiftWrap:      payload.GiftWrap,
			GiftMessage:   payload.GiftMessage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOrderResult(w, result)
	}
}

type customOrderRequest struct {
	contactRequest
	Description string `json:"description" validate:"required,max=2000"`
	Colors      string `json:"colors" validate:"max=500"`
	Timeline    string `json:"timeline" validate:"max=200"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// RequestCustomOrder records a quote request for a made-to-order piece.
func RequestCustomOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload customOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.RequestCustomOrder(r.Context(), checkout.CustomOrderInput{
			Contact:     payload.contact(),
			Description: payload.Description,
			Colors:      payload.Colors,
			Timeline:    payload.Timeline,
			Notes:       payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOrderResult(w, result)
	}
}

func writeOrderResult(w http.ResponseWriter, result *checkout.Result) {
	status := http.StatusCreated
	if !result.Persisted {
		status = http.StatusAccepted
	}
	responses.WriteSuccessStatus(w, status, result)
}
