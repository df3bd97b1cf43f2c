package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	"github.com/phoolcraft/phool-backend/internal/fundraisers"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// ListFundraisers serves the active campaigns.
func ListFundraisers(svc fundraisers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ListActive(r.Context()))
	}
}

func GetFundraiser(svc fundraisers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.GetActive(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type fundraiserCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Goal        string  `json:"goal" validate:"max=100"`
	GoalPKR     *int64  `json:"goal_pkr" validate:"omitempty,gte=0"`
	Active      bool    `json:"active"`
	ProductID   *int64  `json:"product_id" validate:"omitempty,gt=0"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Image       *string `json:"image"`
}

func (r fundraiserCreateRequest) toInput() (fundraisers.CreateInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return fundraisers.CreateInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return fundraisers.CreateInput{}, err
	}
	return fundraisers.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		Goal:        r.Goal,
		GoalPKR:     r.GoalPKR,
		Active:      r.Active,
		ProductID:   r.ProductID,
		StartDate:   start,
		EndDate:     end,
		Image:       r.Image,
	}, nil
}

type fundraiserUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Goal        *string `json:"goal" validate:"omitempty,max=100"`
	GoalPKR     *int64  `json:"goal_pkr" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active"`
	ProductID   *int64  `json:"product_id" validate:"omitempty,gt=0"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Image       *string `json:"image"`
}

func (r fundraiserUpdateRequest) toInput() (fundraisers.UpdateInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return fundraisers.UpdateInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return fundraisers.UpdateInput{}, err
	}
	return fundraisers.UpdateInput{
		Title:       r.Title,
		Description: r.Description,
		Goal:        r.Goal,
		GoalPKR:     r.GoalPKR,
		Active:      r.Active,
		ProductID:   r.ProductID,
		StartDate:   start,
		EndDate:     end,
		Image:       r.Image,
	}, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp. Blank
// input is treated as absent.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
		WithDetails(map[string]any{"field": field, "format": dateLayout})
}

func AdminListFundraisers(svc fundraisers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ListAll(r.Context()))
	}
}

func AdminCreateFundraiser(svc fundraisers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload fundraiserCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

func AdminUpdateFundraiser(svc fundraisers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload fundraiserUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AdminDeleteFundraiser(svc fundraisers.Service, logg *logger.Logger) http.HandlerFunc {
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
