package reviews

import (
	"context"
	"strings"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
)

const anonymousName = "Anonymous"

// Service exposes public review reads and submission plus moderation.
type Service interface {
	ListApproved(ctx context.Context, productID int64) ([]models.Review, Summary)
	Submit(ctx context.Context, input SubmitInput) (*models.Review, error)
	ListAll(ctx context.Context) []models.Review
	ListForProduct(ctx context.Context, productID int64) []models.Review
	SetApproved(ctx context.Context, id int64, approved bool) (*models.Review, error)
	Delete(ctx context.Context, id int64) error
}

// SubmitInput is a customer review before clamping.
type SubmitInput struct {
	ProductID int64
	Name      string
	Rating    float64
	Comment   string
}

type productLookup interface {
	LoadByID(ctx context.Context, id int64) *models.Product
}

type service struct {
	repo     *Repository
	products productLookup
}

// NewService builds the review service. products may be nil, in which case
// submissions are not checked against the catalog.
func NewService(r *Repository, products productLookup) (Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repository is required")
	}
	return &service{repo: r, products: products}, nil
}

// ListApproved returns a product's approved reviews, newest first, with
// their summary.
func (s *service) ListApproved(ctx context.Context, productID int64) ([]models.Review, Summary) {
	all := s.repo.LoadAll(ctx)
	out := make([]models.Review, 0)
	for _, r := range all {
		if r.ProductID == productID && r.Approved {
			out = append(out, r)
		}
	}
	return out, Summarize(out)
}

// Submit clamps the rating, truncates the comment and stores the review
// unapproved.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Review, error) {
	if input.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	comment := TruncateComment(input.Comment)
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}
	if s.products != nil && s.products.LoadByID(ctx, input.ProductID) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = anonymousName
	}

	created := s.repo.Create(ctx, models.Review{
		ProductID: input.ProductID,
		Name:      name,
		Rating:    ClampRating(input.Rating),
		Comment:   comment,
		Approved:  false,
	})
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not save review")
	}
	return created, nil
}

func (s *service) ListAll(ctx context.Context) []models.Review {
	return s.repo.LoadAll(ctx)
}

func (s *service) ListForProduct(ctx context.Context, productID int64) []models.Review {
	return s.repo.LoadForProduct(ctx, productID, false)
}

func (s *service) SetApproved(ctx context.Context, id int64, approved bool) (*models.Review, error) {
	if s.repo.LoadByID(ctx, id) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	updated := s.repo.Update(ctx, id, remote.Patch{"approved": approved})
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not update review")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if !s.repo.Delete(ctx, id) {
		return pkgerrors.New(pkgerrors.CodeDependency, "could not delete review")
	}
	return nil
}
