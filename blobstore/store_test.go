package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	}
}

func TestBlobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte("ensemble at T=2.27")
			require.NoError(t, store.Put(ctx, "runs/a.isng", data))
			require.NoError(t, store.Put(ctx, "runs/b.isng", []byte("b")))
			require.NoError(t, store.Put(ctx, "other.yaml", []byte("c")))

			blob, err := store.Open(ctx, "runs/a.isng")
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 4)
			n, err := blob.ReadAt(ctx, buf, 12)
			require.NoError(t, err)
			assert.Equal(t, "2.27", string(buf[:n]))

			n, err = blob.ReadAt(ctx, make([]byte, 10), 12)
			assert.Equal(t, 6, n)
			assert.ErrorIs(t, err, io.EOF)
			require.NoError(t, blob.Close())

			all, err := ReadAll(ctx, store, "runs/a.isng")
			require.NoError(t, err)
			assert.Equal(t, data, all)

			names, err := store.List(ctx, "runs/")
			require.NoError(t, err)
			assert.Equal(t, []string{"runs/a.isng", "runs/b.isng"}, names)

			names, err = store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, names, 3)

			require.NoError(t, store.Delete(ctx, "runs/a.isng"))
			require.NoError(t, store.Delete(ctx, "runs/a.isng"))
			_, err = store.Open(ctx, "runs/a.isng")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlobStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "x", []byte("first")))
			require.NoError(t, store.Put(ctx, "x", []byte("second!")))
			got, err := ReadAll(ctx, store, "x")
			require.NoError(t, err)
			assert.Equal(t, "second!", string(got))
		})
	}
}

func TestBlobStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "empty", nil))
			got, err := ReadAll(ctx, store, "empty")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", data))
	data[0] = 'z'
	got, err := ReadAll(ctx, store, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalStore_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	for _, name := range []string{"", "../x", "/etc/passwd"} {
		assert.ErrorIs(t, store.Put(ctx, name, []byte("x")), ErrInvalidName, name)
	}
}

func TestLocalStore_OnDiskAndMappable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)
	require.NoError(t, store.Put(ctx, "nested/blob.bin", []byte("payload")))

	_, err := os.Stat(filepath.Join(dir, "nested", "blob.bin"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, "nested/blob.bin")
	require.NoError(t, err)
	m, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
	require.NoError(t, blob.Close())
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
