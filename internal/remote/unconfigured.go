package remote

import (
	"context"
	"fmt"
	"strings"
)

// Unconfigured stands in for the datastore when none was configured. Reads
// come back empty and writes fail with ErrNotConfigured.
type Unconfigured[T Record] struct{}

func (Unconfigured[T]) Name() string { return "" }

func (Unconfigured[T]) SelectAll(context.Context) ([]T, error) { return []T{}, nil }

func (Unconfigured[T]) SelectWhere(context.Context, ...Filter) ([]T, error) { return []T{}, nil }

func (Unconfigured[T]) SelectByID(context.Context, int64) (*T, error) { return nil, nil }

func (Unconfigured[T]) Insert(context.Context, *T) (*T, error) { return nil, ErrNotConfigured }

func (Unconfigured[T]) Update(context.Context, int64, Patch) (*T, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured[T]) UpdateWhere(context.Context, Patch, ...Filter) ([]T, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured[T]) Delete(context.Context, int64) error { return ErrNotConfigured }

func (Unconfigured[T]) DeleteWhere(context.Context, ...Filter) (int64, error) {
	return 0, ErrNotConfigured
}

// UnconfiguredBlobs rejects uploads when no bucket was configured.
type UnconfiguredBlobs struct{}

func (UnconfiguredBlobs) Upload(context.Context, string, string, []byte) (string, error) {
	return "", ErrNotConfigured
}

func (UnconfiguredBlobs) Remove(context.Context, ...string) error { return ErrNotConfigured }

func (UnconfiguredBlobs) ObjectPath(publicURL string) string {
	if i := strings.LastIndex(publicURL, "/"); i >= 0 {
		return publicURL[i+1:]
	}
	return publicURL
}

func lowerString(v any) string {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return strings.ToLower(fmt.Sprint(v))
}
