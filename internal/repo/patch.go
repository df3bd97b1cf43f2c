package repo

import "github.com/phoolcraft/phool-backend/internal/remote"

// The apply helpers never mutate their input; the cache slice may still be
// held by a reader.

func indexOf[T remote.Record](data []T, id int64) int {
	for i, row := range data {
		if row.RecordID() == id {
			return i
		}
	}
	return -1
}

// applyCreate puts a new row first, matching the newest-first order of
// LoadAll. A row whose id is already cached replaces the old copy instead.
func applyCreate[T remote.Record](data []T, row T) []T {
	if i := indexOf(data, row.RecordID()); i >= 0 {
		return applyUpdate(data, row)
	}
	out := make([]T, 0, len(data)+1)
	out = append(out, row)
	return append(out, data...)
}

// applyUpdate replaces the row with the same id in place. Rows that are not
// cached are left for the next refresh to pick up.
func applyUpdate[T remote.Record](data []T, row T) []T {
	i := indexOf(data, row.RecordID())
	if i < 0 {
		return data
	}
	out := make([]T, len(data))
	copy(out, data)
	out[i] = row
	return out
}

// applyDelete drops the row with id.
func applyDelete[T remote.Record](data []T, id int64) []T {
	i := indexOf(data, id)
	if i < 0 {
		return data
	}
	out := make([]T, 0, len(data)-1)
	out = append(out, data[:i]...)
	return append(out, data[i+1:]...)
}
