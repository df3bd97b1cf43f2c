package products

import (
	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// Service is the admin management surface for products.
type Service = catalog.Manager[models.Product, *models.Product]

// NewService builds the product manager.
func NewService(r *Repository, blobs remote.BlobStore, storage config.StorageConfig, logg *logger.Logger) (*Service, error) {
	return catalog.NewManager[models.Product, *models.Product](catalog.ManagerParams[models.Product]{
		Label:   "product",
		Repo:    r,
		Blobs:   blobs,
		Storage: storage,
		Logger:  logg,
	})
}
