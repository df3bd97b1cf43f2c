// Package products owns the handcrafted product listings: the cached
// repository over the products table and the admin management service.
package products

import (
	"time"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/repo"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

// Entity is the repository name used in logs and metrics.
const Entity = "products"

// Repository is the cached product table.
type Repository = repo.Cached[models.Product]

// NewRepository wraps table with the product cache.
func NewRepository(table remote.Table[models.Product], ttl time.Duration, logg *logger.Logger, m *metrics.CacheMetrics) *Repository {
	return repo.New(table, repo.Options[models.Product]{
		Entity:    Entity,
		TTL:       ttl,
		Normalize: Normalize,
		Logger:    logg,
		Metrics:   m,
	})
}

// Normalize canonicalises the images column.
func Normalize(p models.Product) models.Product {
	p.Images = types.ImageList(types.NormalizeImages(p.Images))
	return p
}
