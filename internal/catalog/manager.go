package catalog

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/phoolcraft/phool-backend/internal/remote"
	"github.com/phoolcraft/phool-backend/internal/repo"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/storage/s3"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

// Entry is satisfied by *models.Product and *models.Card.
type Entry[T any] interface {
	*T
	Catalog() *models.CatalogFields
}

// CreateInput is the admin payload for a new listing.
type CreateInput struct {
	Name        string
	Price       int64
	Categories  []string
	Images      []string
	Description string
	InStock     bool
	IsCustom    bool
}

// UpdateInput is a partial update; nil fields are left alone.
type UpdateInput struct {
	Name        *string
	Price       *int64
	Categories  []string
	Images      []string
	Description *string
	InStock     *bool
	IsCustom    *bool
}

// Patch converts the input into a column patch.
func (in UpdateInput) Patch() (remote.Patch, error) {
	patch := remote.Patch{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		patch["name"] = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		patch["price"] = *in.Price
	}
	if in.Categories != nil {
		joined := types.JoinCategories(in.Categories)
		if joined == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one category is required")
		}
		patch["category"] = joined
	}
	if in.Images != nil {
		patch["images"] = types.ImageList(types.NormalizeImages(in.Images))
	}
	if in.Description != nil {
		patch["description"] = strings.TrimSpace(*in.Description)
	}
	if in.InStock != nil {
		patch["in_stock"] = *in.InStock
	}
	if in.IsCustom != nil {
		patch["is_custom"] = *in.IsCustom
	}
	if len(patch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	return patch, nil
}

// ManagerParams groups the dependencies of a Manager.
type ManagerParams[T remote.Record] struct {
	// Label is the singular noun used in error messages ("product").
	Label   string
	Repo    *repo.Cached[T]
	Blobs   remote.BlobStore
	Storage config.StorageConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

// Manager implements the admin write paths shared by products and cards.
// Repository failures surface as typed errors so the dashboard can show
// them; reads stay on the repository's safe defaults.
type Manager[T remote.Record, PT Entry[T]] struct {
	label   string
	repo    *repo.Cached[T]
	blobs   remote.BlobStore
	storage config.StorageConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewManager validates params and builds a Manager.
func NewManager[T remote.Record, PT Entry[T]](params ManagerParams[T]) (*Manager[T, PT], error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repository is required")
	}
	if params.Blobs == nil {
		params.Blobs = remote.UnconfiguredBlobs{}
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Label == "" {
		params.Label = "item"
	}
	return &Manager[T, PT]{
		label:   params.Label,
		repo:    params.Repo,
		blobs:   params.Blobs,
		storage: params.Storage,
		logg:    params.Logger,
		now:     params.Now,
	}, nil
}

// List returns every row, newest first.
func (m *Manager[T, PT]) List(ctx context.Context) []T {
	return m.repo.LoadAll(ctx)
}

// Get returns one row or a not-found error.
func (m *Manager[T, PT]) Get(ctx context.Context, id int64) (*T, error) {
	row := m.repo.LoadByID(ctx, id)
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, m.label+" not found")
	}
	return row, nil
}

// Create validates and inserts a listing.
func (m *Manager[T, PT]) Create(ctx context.Context, in CreateInput) (*T, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if in.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	category := types.JoinCategories(in.Categories)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one category is required")
	}

	var record T
	fields := PT(&record).Catalog()
	fields.Name = name
	fields.Price = in.Price
	fields.Category = category
	fields.Images = types.ImageList(types.NormalizeImages(in.Images))
	fields.Description = strings.TrimSpace(in.Description)
	fields.InStock = in.InStock
	fields.IsCustom = in.IsCustom

	created := m.repo.Create(ctx, record)
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not save "+m.label)
	}
	return created, nil
}

// Update applies a partial update to an existing listing.
func (m *Manager[T, PT]) Update(ctx context.Context, id int64, in UpdateInput) (*T, error) {
	patch, err := in.Patch()
	if err != nil {
		return nil, err
	}
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	updated := m.repo.Update(ctx, id, patch)
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not update "+m.label)
	}
	return updated, nil
}

// Delete removes a listing.
func (m *Manager[T, PT]) Delete(ctx context.Context, id int64) error {
	if !m.repo.Delete(ctx, id) {
		return pkgerrors.New(pkgerrors.CodeDependency, "could not delete "+m.label)
	}
	return nil
}

// UploadImage downsizes data, stores it under <id>/<millis>-<index>.<ext>
// and appends its public URL to the listing's images.
func (m *Manager[T, PT]) UploadImage(ctx context.Context, id int64, filename string, data []byte) (*T, error) {
	if max := m.storage.MaxUploadMB; max > 0 && len(data) > max<<20 {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, "image exceeds upload limit").
			WithDetails(map[string]any{"max_mb": max})
	}
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prepared, err := s3.PrepareImage(data, m.storage.ImageMaxWidth, m.storage.ImageMaxHeight, m.storage.ImageQuality)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image")
	}
	images := PT(current).Catalog().Images
	ext := prepared.Ext
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(filename), ".")
	}
	objectPath := s3.ImageObjectPath(id, m.now(), len(images), ext)

	url, err := m.blobs.Upload(ctx, objectPath, prepared.ContentType, prepared.Data)
	if err != nil {
		m.logg.Error(m.logg.WithField(ctx, "object_path", objectPath), "catalog.image_upload_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not upload image")
	}

	next := append(slices.Clone([]string(images)), url)
	updated := m.repo.Update(ctx, id, remote.Patch{"images": types.ImageList(next)})
	if updated == nil {
		// drop the orphaned object
		if err := m.blobs.Remove(ctx, objectPath); err != nil {
			m.logg.Warn(m.logg.WithField(ctx, "object_path", objectPath), "catalog.orphan_cleanup_failed")
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not attach image to "+m.label)
	}
	return updated, nil
}

// DeleteImage removes url from the listing and, best effort, from the bucket.
func (m *Manager[T, PT]) DeleteImage(ctx context.Context, id int64, url string) (*T, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	images := PT(current).Catalog().Images
	next := slices.DeleteFunc(slices.Clone([]string(images)), func(s string) bool { return s == url })
	if len(next) == len(images) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found on "+m.label)
	}

	updated := m.repo.Update(ctx, id, remote.Patch{"images": types.ImageList(next)})
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "could not update "+m.label)
	}

	if objectPath := m.blobs.ObjectPath(url); objectPath != "" && strings.Contains(url, "://") {
		if err := m.blobs.Remove(ctx, objectPath); err != nil {
			m.logg.Error(m.logg.WithField(ctx, "object_path", objectPath), "catalog.image_remove_failed", err)
		}
	}
	return updated, nil
}
