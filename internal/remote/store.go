package remote

import (
	"gorm.io/gorm"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
)

// Store bundles one Table per storefront entity plus the image bucket.
type Store struct {
	Products    Table[models.Product]
	Cards       Table[models.Card]
	Fundraisers Table[models.Fundraiser]
	Reviews     Table[models.Review]
	Orders      Table[models.Order]
	Blobs       BlobStore
	configured  bool
}

// Configured reports whether the store talks to a real datastore.
func (s *Store) Configured() bool {
	return s != nil && s.configured
}

// NewGormStore builds tables over conn. Older schemas created the products
// table with a capitalised name, so both spellings are tried.
func NewGormStore(conn *gorm.DB, blobs BlobStore) *Store {
	if blobs == nil {
		blobs = UnconfiguredBlobs{}
	}
	return &Store{
		Products:    NewGormTable[models.Product](conn, "Products", "products"),
		Cards:       NewGormTable[models.Card](conn, "cards", "Cards"),
		Fundraisers: NewGormTable[models.Fundraiser](conn, "fundraisers", "Fundraisers"),
		Reviews:     NewGormTable[models.Review](conn, "reviews", "Reviews"),
		Orders:      NewGormTable[models.Order](conn, "orders", "Orders"),
		Blobs:       blobs,
		configured:  true,
	}
}

// NewUnconfiguredStore builds the no-op store used without a datastore.
func NewUnconfiguredStore(blobs BlobStore) *Store {
	if blobs == nil {
		blobs = UnconfiguredBlobs{}
	}
	return &Store{
		Products:    Unconfigured[models.Product]{},
		Cards:       Unconfigured[models.Card]{},
		Fundraisers: Unconfigured[models.Fundraiser]{},
		Reviews:     Unconfigured[models.Review]{},
		Orders:      Unconfigured[models.Order]{},
		Blobs:       blobs,
	}
}
