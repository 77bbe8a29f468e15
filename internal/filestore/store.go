// Package filestore defines the unified contract for object-storage backends.
//
// All providers (local disk, MinIO, ...) implement the Store interface.
// Callers depend only on this package, never on a specific provider package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("public/uploads")
//	store, err := disk.New(cfg, log)
//	if err != nil { ... }
//
//	res, err := store.Upload(ctx, bytes.NewReader(data),
//		&filestore.UploadOptions{Filename: "report.pdf"})
//	if err != nil { ... }
//
//	content, err := store.Download(ctx, res.Key)
package filestore

import (
	"context"
	"io"
)

// Store is the single interface all object-storage providers must implement.
//
// Every operation is an independent, self-contained transaction against the
// backend: no session state is carried between calls, and nothing is cached.
// Concurrent uploads never collide because every key embeds a fresh unique
// identifier, but concurrent operations on the same key are not serialized:
// a reader racing an upload may observe content without its metadata record.
// Callers needing per-key consistency must serialize at a higher layer.
type Store interface {
	// Upload materializes content into a byte buffer, stores it under a
	// freshly built key, writes the metadata record alongside it, and
	// returns the key, the resolved source URL and the metadata.
	// Filename and content type come from opts or from the defaulting
	// rules described on UploadOptions.
	Upload(ctx context.Context, content io.Reader, opts *UploadOptions) (*UploadResult, error)

	// CreateUploadURL returns a URL a client can upload to directly,
	// or "" when the backend has no direct-upload path and callers must
	// use Upload instead.
	CreateUploadURL(ctx context.Context, opts *UploadOptions) (string, error)

	// Download returns the full content bytes stored under key.
	// It fails with a NotFound error (carrying the key) when no content
	// exists; any other I/O failure propagates.
	Download(ctx context.Context, key string) ([]byte, error)

	// Delete removes the content and its metadata record. Absence of
	// either is success: deleting the same key twice never errors.
	Delete(ctx context.Context, key string) error

	// Exists reports whether content is stored under key. A missing
	// object is (false, nil); only genuine I/O failures return an error.
	Exists(ctx context.Context, key string) (bool, error)

	// GetMetadata returns the metadata record stored alongside the
	// content, or (nil, nil) when no record exists. Metadata is optional
	// state layered on top of content, so absence is not an error.
	GetMetadata(ctx context.Context, key string) (*FileMetadata, error)

	// GetSourceURL returns the externally reachable URL for key, or ""
	// when no content is stored under it.
	GetSourceURL(ctx context.Context, key string) (string, error)

	// GetDownloadURL returns a URL suitable for downloading key, or ""
	// when no content is stored under it. Backends with a single access
	// path return the same value as GetSourceURL; remote backends may
	// return a time-limited URL instead.
	GetDownloadURL(ctx context.Context, key string) (string, error)
}
