package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/isingkm/blobstore"
	miniostore "github.com/hupe1980/isingkm/blobstore/minio"
	s3store "github.com/hupe1980/isingkm/blobstore/s3"
)

// storeURL is a parsed store location.
type storeURL struct {
	Scheme string
	// Host is the MinIO endpoint or the memory store name.
	Host   string
	Bucket string
	// Path is the local directory for file stores and the key prefix otherwise.
	Path  string
	Query url.Values
}

func parseStoreURL(raw string) (storeURL, error) {
	if raw == "" {
		return storeURL{}, fmt.Errorf("store: empty URL")
	}
	if !strings.Contains(raw, "://") {
		return storeURL{Scheme: "file", Path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return storeURL{}, fmt.Errorf("store: %w", err)
	}
	s := storeURL{Scheme: u.Scheme, Query: u.Query()}
	switch u.Scheme {
	case "file":
		// file://./data keeps "." as host; file:///abs has an empty host.
		s.Path = u.Host + u.Path
		if s.Path == "" {
			return storeURL{}, fmt.Errorf("store: %q has no directory", raw)
		}
	case "mem":
		s.Host = u.Host
	case "s3":
		s.Bucket = u.Host
		s.Path = strings.Trim(u.Path, "/")
		if s.Bucket == "" {
			return storeURL{}, fmt.Errorf("store: %q has no bucket", raw)
		}
	case "minio":
		s.Host = u.Host
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		s.Bucket = bucket
		s.Path = strings.Trim(prefix, "/")
		if s.Host == "" || s.Bucket == "" {
			return storeURL{}, fmt.Errorf("store: %q needs host and bucket", raw)
		}
	default:
		return storeURL{}, fmt.Errorf("store: unsupported scheme %q", u.Scheme)
	}
	return s, nil
}

var (
	memMu     sync.Mutex
	memStores = map[string]*blobstore.MemoryStore{}
)

// memoryStore returns the process-wide memory store called name.
func memoryStore(name string) *blobstore.MemoryStore {
	memMu.Lock()
	defer memMu.Unlock()
	s, ok := memStores[name]
	if !ok {
		s = blobstore.NewMemoryStore()
		memStores[name] = s
	}
	return s
}

func openStore(ctx context.Context, raw string) (blobstore.BlobStore, error) {
	u, err := parseStoreURL(raw)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "file":
		return blobstore.NewLocalStore(filepath.FromSlash(u.Path)), nil
	case "mem":
		return memoryStore(u.Host), nil
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(u.Path)}
		if r := u.Query.Get("region"); r != "" {
			opts = append(opts, s3store.WithRegion(r))
		}
		if e := u.Query.Get("endpoint"); e != "" {
			opts = append(opts, s3store.WithEndpoint(e))
		}
		return s3store.New(ctx, u.Bucket, opts...)
	case "minio":
		secure := true
		if v := u.Query.Get("secure"); v != "" {
			if secure, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("store: secure: %w", err)
			}
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: secure,
		})
		if err != nil {
			return nil, fmt.Errorf("store: minio client: %w", err)
		}
		return miniostore.NewStore(client, u.Bucket, u.Path), nil
	}
	return nil, fmt.Errorf("store: unsupported scheme %q", u.Scheme)
}
