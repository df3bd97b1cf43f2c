package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "phool_cart_v1:abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "phool_cart_v1:abc", []byte(`[{"id":1}]`)))
	require.NoError(t, store.Set(ctx, "phool_cart_v1:abc", []byte(`[{"id":2}]`)))

	raw, found, err := store.Get(ctx, "phool_cart_v1:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":2}]`, string(raw))

	require.NoError(t, store.Delete(ctx, "phool_cart_v1:abc"))
	require.NoError(t, store.Delete(ctx, "phool_cart_v1:abc"))
	_, found, err = store.Get(ctx, "phool_cart_v1:abc")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.SetNX(ctx, "idem:k", []byte("first"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.SetNX(ctx, "idem:k", []byte("second"))
	require.NoError(t, err)
	assert.False(t, ok)
	raw, _, err = store.Get(ctx, "idem:k")
	require.NoError(t, err)
	assert.Equal(t, "first", string(raw))
	require.NoError(t, store.Delete(ctx, "idem:k"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	value := []byte("abc")
	require.NoError(t, store.Set(context.Background(), "k", value))
	value[0] = 'z'
	raw, _, _ := store.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(raw))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "phool_orders_backup", []byte("[]")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "phool_orders_backup.json", entries[0].Name())
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "../escape", []byte("x")))

	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err), "key must stay inside the data dir")
}

func TestNewFileRequiresDir(t *testing.T) {
	_, err := NewFile("")
	assert.Error(t, err)
}

type fakeRedis struct {
	data map[string][]byte
}

func (f *fakeRedis) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.([]byte)
	return nil
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.([]byte)
	return true, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) StorageKey(parts ...string) string {
	out := "phool:local"
	for _, p := range parts {
		out += ":" + p
	}
	return out
}

func TestRedisStore(t *testing.T) {
	fake := &fakeRedis{data: map[string][]byte{}}
	exerciseStore(t, NewRedis(fake))

	require.NoError(t, NewRedis(fake).Set(context.Background(), "k", []byte("v")))
	_, ok := fake.data["phool:local:k"]
	assert.True(t, ok, "values are namespaced")
}
