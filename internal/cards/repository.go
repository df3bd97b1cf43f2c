// Package cards owns the greeting card listings. Cards share the product
// shape and most cards are personalised, so the basket keys them by their
// custom text.
package cards

import (
	"time"

	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/repo"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

const Entity = "cards"

// Repository is the cached card table.
type Repository = repo.Cached[models.Card]

// NewRepository wraps table with the card cache.
func NewRepository(table remote.Table[models.Card], ttl time.Duration, logg *logger.Logger, m *metrics.CacheMetrics) *Repository {
	return repo.New(table, repo.Options[models.Card]{
		Entity: Entity,
		TTL:    ttl,
		Normalize: func(c models.Card) models.Card {
			c.Images = types.ImageList(types.NormalizeImages(c.Images))
			return c
		},
		Logger:  logg,
		Metrics: m,
	})
}

// Service is the admin management surface for cards.
type Service = catalog.Manager[models.Card, *models.Card]

// NewService builds the card manager.
func NewService(r *Repository, blobs remote.BlobStore, storage config.StorageConfig, logg *logger.Logger) (*Service, error) {
	return catalog.NewManager[models.Card, *models.Card](catalog.ManagerParams[models.Card]{
		Label:   "card",
		Repo:    r,
		Blobs:   blobs,
		Storage: storage,
		Logger:  logg,
	})
}
