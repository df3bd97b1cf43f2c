package fundraisers

import (
	"context"
	"strings"
	"time"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
)

// Service exposes the public listing and admin management of fundraisers.
type Service interface {
	ListActive(ctx context.Context) []models.Fundraiser
	GetActive(ctx context.Context, id int64) (*models.Fundraiser, error)
	ListAll(ctx context.Context) []models.Fundraiser
	Create(ctx context.Context, input CreateInput) (*models.Fundraiser, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Fundraiser, error)
	Delete(ctx context.Context, id int64) error
}

// CreateInput holds a validated new fundraiser.
type CreateInput struct {
	Title       string
	Description string
	Goal        string
	GoalPKR     *int64
	Active      bool
	ProductID   *int64
	StartDate   *time.Time
	EndDate     *time.Time
	Image       *string
}

// UpdateInput holds optional fundraiser changes.
type UpdateInput struct {
	Title       *string
	Description *string
	Goal        *string
	GoalPKR     *int64
	Active      *bool
	ProductID   *int64
	StartDate   *time.Time
	EndDate     *time.Time
	Image       *string
}

type service struct {
	repo *Repository
}

// NewService builds the fundraiser service.
func NewService(r *Repository) (Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fundraiser repository is required")
	}
	return &service{repo: r}, nil
}

func (s *service) ListActive(ctx context.Context) []models.Fundraiser {
	all := s.repo.LoadAll(ctx)
	out := make([]models.Fundraiser, 0, len(all))
	for _, f := range all {
		if f.Active {
			out = append(out, f)
		}
	}
	return out
}

func (s *service) GetActive(ctx context.Context, id int64) (*models.Fundraiser, error) {
	f := s.repo.LoadByID(ctx, id)
	if f == nil || !f.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fundraiser not found")
	}
	return f, nil
}

func (s *service) ListAll(ctx context.Context) []models.Fundraiser {
	return s.repo.LoadAll(ctx)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Fundraiser, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := validateGoal(input.GoalPKR); err != nil {
		return nil, err
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	record := models.Fundraiser{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Goal:        strings.TrimSpace(input.Goal),
		GoalPKR:     input.GoalPKR,
		Active:      input.Active,
		ProductID:   input.ProductID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Image:       trimmedOrNil(input.Image),
	}
	record.Goal = record.DisplayGoal()

	created := s.repo.Create(ctx, record)
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not save fundraiser")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Fundraiser, error) {
	current := s.repo.LoadByID(ctx, id)
	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fundraiser not found")
	}

	patch := remote.Patch{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be blank")
		}
		patch["title"] = title
	}
	if input.Description != nil {
		patch["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Goal != nil {
		patch["goal"] = strings.TrimSpace(*input.Goal)
	}
	if input.GoalPKR != nil {
		if err := validateGoal(input.GoalPKR); err != nil {
			return nil, err
		}
		patch["goal_pkr"] = *input.GoalPKR
		patch["goal"] = models.FormatGoal(*input.GoalPKR)
	} else if input.Goal != nil && current.GoalPKR != nil {
		// goal_pkr stays authoritative
		patch["goal"] = models.FormatGoal(*current.GoalPKR)
	}
	if input.Active != nil {
		patch["active"] = *input.Active
	}
	if input.ProductID != nil {
		patch["product_id"] = *input.ProductID
	}

	start, end := current.StartDate, current.EndDate
	if input.StartDate != nil {
		start = input.StartDate
		patch["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		end = input.EndDate
		patch["end_date"] = *input.EndDate
	}
	if err := validateDates(start, end); err != nil {
		return nil, err
	}
	if input.Image != nil {
		patch["image"] = trimmedOrNil(input.Image)
	}
	if len(patch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	updated := s.repo.Update(ctx, id, patch)
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not update fundraiser")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if !s.repo.Delete(ctx, id) {
		return pkgerrors.New(pkgerrors.CodeDependency, "could not delete fundraiser")
	}
	return nil
}

func validateGoal(goal *int64) error {
	if goal != nil && *goal < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "goal_pkr cannot be negative")
	}
	return nil
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_date must not be before start_date")
	}
	return nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
