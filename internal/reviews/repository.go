// Package reviews stores customer reviews and derives product ratings.
// Submissions wait for admin approval; public reads only ever see approved
// reviews.
package reviews

import (
	"context"
	"time"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/repo"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
)

const (
	Entity = "reviews"

	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 150
)

// Repository is the cached review table plus a product-scoped query.
type Repository struct {
	*repo.Cached[models.Review]
	logg *logger.Logger
}

// NewRepository wraps table with the review cache.
func NewRepository(table remote.Table[models.Review], ttl time.Duration, logg *logger.Logger, m *metrics.CacheMetrics) *Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{
		Cached: repo.New(table, repo.Options[models.Review]{
			Entity:  Entity,
			TTL:     ttl,
			Logger:  logg,
			Metrics: m,
		}),
		logg: logg,
	}
}

// LoadForProduct queries the store for one product's reviews, bypassing the
// cache. approvedOnly narrows to public reviews. Failures yield an empty list.
func (r *Repository) LoadForProduct(ctx context.Context, productID int64, approvedOnly bool) []models.Review {
	filters := []remote.Filter{remote.Eq("product_id", productID)}
	if approvedOnly {
		filters = append(filters, remote.Eq("approved", true))
	}
	rows, err := r.Table().SelectWhere(ctx, filters...)
	if err != nil {
		ctx = r.logg.WithFields(r.logg.WithEntity(ctx, Entity), map[string]any{"product_id": productID})
		r.logg.Error(ctx, "repository.remote_failed", err)
		return []models.Review{}
	}
	return rows
}
