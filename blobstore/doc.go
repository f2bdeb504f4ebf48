// Package blobstore abstracts where ensemble datasets and reports live.
//
// A BlobStore holds immutable, whole-object blobs addressed by slash-separated
// names. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and the mem:// scheme
//   - LocalStore: a directory on disk, read through mmap
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//
// ThrottledStore wraps any of them with the limits of a resource.Controller.
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
