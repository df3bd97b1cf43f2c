package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/phoolcraft/phool-backend/pkg/db"
)

const newestFirst = "created_at DESC, id DESC"

// GormTable is a Table backed by a GORM connection. The physical table name
// is picked from candidates on first use: the first name a probe query
// accepts wins and is remembered for the life of the table.
type GormTable[T Record] struct {
	conn       *gorm.DB
	candidates []string

	mu       sync.RWMutex
	resolved string
}

// NewGormTable builds a table that tries candidates in order.
func NewGormTable[T Record](conn *gorm.DB, candidates ...string) *GormTable[T] {
	return &GormTable[T]{conn: conn, candidates: candidates}
}

// Name reports the resolved table name.
func (t *GormTable[T]) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolved
}

func (t *GormTable[T]) session(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return t.conn
	}
	return t.conn.WithContext(ctx)
}

func (t *GormTable[T]) resolve(ctx context.Context) (string, error) {
	if name := t.Name(); name != "" {
		return name, nil
	}
	if len(t.candidates) == 0 {
		return "", errors.New("no table candidates configured")
	}

	var errs error
	for _, name := range t.candidates {
		var probe []T
		err := t.session(ctx).Table(name).Limit(1).Find(&probe).Error
		if err == nil {
			t.mu.Lock()
			t.resolved = name
			t.mu.Unlock()
			return name, nil
		}
		errs = multierr.Append(errs, fmt.Errorf("table %s: %w", name, err))
	}
	return "", errs
}

func (t *GormTable[T]) table(ctx context.Context) (*gorm.DB, error) {
	name, err := t.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return t.session(ctx).Table(name), nil
}

func applyFilters(tx *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return nil, err
		}
		switch f.Op {
		case OpEq:
			tx = tx.Where(f.Column+" = ?", f.Value)
		case OpContainsFold:
			tx = tx.Where("LOWER("+f.Column+") LIKE ?", "%"+lowerString(f.Value)+"%")
		}
	}
	return tx, nil
}

func (t *GormTable[T]) SelectAll(ctx context.Context) ([]T, error) {
	return t.SelectWhere(ctx)
}

func (t *GormTable[T]) SelectWhere(ctx context.Context, filters ...Filter) ([]T, error) {
	tx, err := t.table(ctx)
	if err != nil {
		return nil, err
	}
	if tx, err = applyFilters(tx, filters); err != nil {
		return nil, err
	}
	var rows []T
	if err := tx.Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (t *GormTable[T]) SelectByID(ctx context.Context, id int64) (*T, error) {
	tx, err := t.table(ctx)
	if err != nil {
		return nil, err
	}
	var row T
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (t *GormTable[T]) Insert(ctx context.Context, record *T) (*T, error) {
	if record == nil {
		return nil, errors.New("record is required")
	}
	tx, err := t.table(ctx)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (t *GormTable[T]) Update(ctx context.Context, id int64, patch Patch) (*T, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	tx, err := t.table(ctx)
	if err != nil {
		return nil, err
	}
	res := tx.Where("id = ?", id).Updates(map[string]any(patch))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	row, err := t.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (t *GormTable[T]) UpdateWhere(ctx context.Context, patch Patch, filters ...Filter) ([]T, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, errors.New("refusing to update without filters")
	}
	tx, err := t.table(ctx)
	if err != nil {
		return nil, err
	}
	if tx, err = applyFilters(tx, filters); err != nil {
		return nil, err
	}
	if err := tx.Updates(map[string]any(patch)).Error; err != nil {
		return nil, err
	}
	return t.SelectWhere(ctx, refilter(filters, patch)...)
}

// refilter swaps equality filters on patched columns for the new value so
// the rows just written can be read back.
func refilter(filters []Filter, patch Patch) []Filter {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		if v, ok := patch[f.Column]; ok {
			f = Eq(f.Column, v)
		}
		out[i] = f
	}
	return out
}

func (t *GormTable[T]) Delete(ctx context.Context, id int64) error {
	tx, err := t.table(ctx)
	if err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *GormTable[T]) DeleteWhere(ctx context.Context, filters ...Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New("refusing to delete without filters")
	}
	tx, err := t.table(ctx)
	if err != nil {
		return 0, err
	}
	if tx, err = applyFilters(tx, filters); err != nil {
		return 0, err
	}
	res := tx.Delete(new(T))
	return res.RowsAffected, res.Error
}
