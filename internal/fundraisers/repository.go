// Package fundraisers manages fundraising campaigns shown on the shop.
package fundraisers

import (
	"time"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/repo"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/metrics"
)

const Entity = "fundraisers"

// Repository is the cached fundraiser table.
type Repository = repo.Cached[models.Fundraiser]

// NewRepository wraps table with the fundraiser cache.
func NewRepository(table remote.Table[models.Fundraiser], ttl time.Duration, logg *logger.Logger, m *metrics.CacheMetrics) *Repository {
	return repo.New(table, repo.Options[models.Fundraiser]{
		Entity:    Entity,
		TTL:       ttl,
		Normalize: Normalize,
		Logger:    logg,
		Metrics:   m,
	})
}

// Normalize derives the display goal from goal_pkr when it is set.
func Normalize(f models.Fundraiser) models.Fundraiser {
	f.Goal = f.DisplayGoal()
	return f
}
