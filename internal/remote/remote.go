// Package remote is the storefront's contract with the hosted relational
// store and blob bucket. Repositories depend on these interfaces only.
package remote

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotConfigured is returned by writes when no datastore was configured.
	ErrNotConfigured = errors.New("remote store not configured")
	// ErrNotFound is returned by id-scoped writes that matched no row.
	ErrNotFound = errors.New("record not found")
)

// Record is implemented by every stored entity.
type Record interface {
	RecordID() int64
}

// Op is a filter comparison.
type Op string

const (
	// OpEq is exact equality.
	OpEq Op = "eq"
	// OpContainsFold is a case-insensitive substring match.
	OpContainsFold Op = "contains_fold"
)

var columnRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Filter narrows a query to rows whose Column matches Value.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// ContainsFold matches rows where column contains substr, ignoring case.
func ContainsFold(column, substr string) Filter {
	return Filter{Column: column, Op: OpContainsFold, Value: substr}
}

func (f Filter) validate() error {
	if !columnRe.MatchString(f.Column) {
		return fmt.Errorf("invalid filter column %q", f.Column)
	}
	switch f.Op {
	case OpEq, OpContainsFold:
		return nil
	default:
		return fmt.Errorf("invalid filter op %q", f.Op)
	}
}

// Patch is a partial update keyed by column name.
type Patch map[string]any

func (p Patch) validate() error {
	if len(p) == 0 {
		return errors.New("empty patch")
	}
	for column := range p {
		if !columnRe.MatchString(column) {
			return fmt.Errorf("invalid patch column %q", column)
		}
		if column == "id" || column == "created_at" {
			return fmt.Errorf("column %q is server-assigned", column)
		}
	}
	return nil
}

// Table is the set of operations the store offers for one table. Every list
// is ordered newest first.
type Table[T Record] interface {
	// Name reports the resolved table name, or "" before the first query.
	Name() string
	SelectAll(ctx context.Context) ([]T, error)
	SelectWhere(ctx context.Context, filters ...Filter) ([]T, error)
	// SelectByID returns (nil, nil) when no row matches.
	SelectByID(ctx context.Context, id int64) (*T, error)
	Insert(ctx context.Context, record *T) (*T, error)
	// Update returns ErrNotFound when no row matches.
	Update(ctx context.Context, id int64, patch Patch) (*T, error)
	UpdateWhere(ctx context.Context, patch Patch, filters ...Filter) ([]T, error)
	// Delete returns ErrNotFound when no row matches.
	Delete(ctx context.Context, id int64) error
	DeleteWhere(ctx context.Context, filters ...Filter) (int64, error)
}

// BlobStore is the object bucket that holds uploaded images.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, objectPaths ...string) error
	// ObjectPath maps a public URL back to its object path.
	ObjectPath(publicURL string) string
}
