package dataset

import (
	"context"

	"github.com/hupe1980/isingkm/blobstore"
)

// Save encodes d and writes it to store under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, d *Dataset, c Compression) error {
	data, err := Marshal(d, c, DefaultBlockSize)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Load reads and decodes the dataset stored under name.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*Dataset, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
