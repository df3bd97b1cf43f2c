package controllers

import (
	"net/http"

	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	"github.com/phoolcraft/phool-backend/internal/reviews"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

type reviewListResponse struct {
	Reviews []models.Review `json:"reviews"`
	Summary reviews.Summary `json:"summary"`
}

// ListProductReviews serves the approved reviews of a product with their
// average rating.
func ListProductReviews(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, summary := svc.ListApproved(r.Context(), productID)
		responses.WriteSuccess(w, reviewListResponse{Reviews: list, Summary: summary})
	}
}

type submitReviewRequest struct {
	Name    string  `json:"name" validate:"max=100"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment" validate:"required"`
}

// SubmitReview stores a review for moderation. Ratings are clamped and
// comments truncated rather than rejected.
func SubmitReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload submitReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := svc.Submit(r.Context(), reviews.SubmitInput{
			ProductID: productID,
			Name:      payload.Name,
			Rating:    payload.Rating,
			Comment:   payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// AdminListReviews lists every review, optionally narrowed by ?product_id=.
func AdminListReviews(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt(r, "product_id", 0, 0, 1<<31-1)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if productID > 0 {
			responses.WriteSuccess(w, svc.ListForProduct(r.Context(), int64(productID)))
			return
		}
		responses.WriteSuccess(w, svc.ListAll(r.Context()))
	}
}

type updateReviewRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

func AdminUpdateReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := svc.SetApproved(r.Context(), id, *payload.Approved)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

func AdminDeleteReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
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
