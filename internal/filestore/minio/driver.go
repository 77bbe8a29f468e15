// Package minio provides an S3-compatible implementation of filestore.Store
// backed by MinIO.
//
// Content lives in a single bucket. Every stored object carries a metadata
// sidecar object under <key>.meta.json, mirroring the disk backend's layout
// so records written by one provider decode identically under the other.
//
// Usage:
//
//	cfg := filestore.DefaultMinIOConfig("localhost:9000", "minioadmin", "minioadmin", "media")
//	store, err := minio.New(ctx, cfg, log)
//	if err != nil { ... }
//
//	res, err := store.Upload(ctx, file, &filestore.UploadOptions{Filename: "report.pdf"})
package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/filedepot/filedepot/internal/errs"
	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/logger"
)

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client     *miniogo.Client
	bucket     string
	keys       filestore.KeyBuilder
	resolver   filestore.URLResolver
	hasBaseURL bool
	presignTTL time.Duration
	log        *logger.Logger
}

// New connects to the configured MinIO endpoint, ensures the bucket
// exists and returns a Driver. The bucket check doubles as the
// connectivity validation performed before New returns.
func New(ctx context.Context, cfg *filestore.Config, log *logger.Logger) (*Driver, error) {
	if cfg == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "minio driver requires a config")
	}
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = filestore.DefaultPresignTTL
	}

	d := &Driver{
		client:     client,
		bucket:     cfg.Bucket,
		keys:       filestore.NewKeyBuilder(cfg.Prefix),
		resolver:   filestore.NewURLResolver(cfg.BaseURL),
		hasBaseURL: cfg.BaseURL != "",
		presignTTL: ttl,
		log:        log.Component("minio"),
	}

	if err := d.ensureBucket(ctx); err != nil {
		return nil, err
	}

	d.log.With().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Logger().Info("minio store ready")

	return d, nil
}

// ensureBucket creates the configured bucket on first use.
func (d *Driver) ensureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return mapError(err, "failed to check bucket")
	}
	if exists {
		return nil
	}
	if err := d.client.MakeBucket(ctx, d.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return mapError(err, "failed to create bucket")
	}
	return nil
}

// --- filestore.Store implementation ---

// Upload stores content under a freshly generated key and writes its
// metadata sidecar as a sibling object. The two puts are independent;
// a failure between them can leave content behind without metadata.
func (d *Driver) Upload(ctx context.Context, content io.Reader, opts *filestore.UploadOptions) (*filestore.UploadResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, mapError(err, "failed to read upload content")
	}

	filename, contentType := filestore.ResolveUploadOptions(opts, data)
	key := d.keys.BuildKey(filename)

	_, err = d.client.PutObject(ctx, d.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, mapError(err, "failed to write content").WithKey(key)
	}

	meta := filestore.NewMetadata(key, int64(len(data)), contentType)
	encoded, err := filestore.EncodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	_, err = d.client.PutObject(ctx, d.bucket, key+filestore.MetadataSuffix,
		bytes.NewReader(encoded), int64(len(encoded)),
		miniogo.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return nil, mapError(err, "failed to write metadata sidecar").WithKey(key)
	}

	d.log.With().Str("key", key).Int64("size", meta.Size).Str("contentType", contentType).Logger().Debug("object stored")

	var sourceURL string
	if d.hasBaseURL {
		sourceURL = d.resolver.Resolve(key)
	} else {
		// Private bucket: a presigned link is the only reachable URL.
		sourceURL, err = d.presignGet(ctx, key)
		if err != nil {
			return nil, err
		}
	}

	return &filestore.UploadResult{
		Key:       key,
		SourceURL: sourceURL,
		Metadata:  meta,
	}, nil
}

// CreateUploadURL presigns a PUT for a freshly built key, letting a
// client push content straight into the bucket. The key is recoverable
// from the URL path. Direct uploads carry content only; no metadata
// sidecar exists until one is written through Upload.
func (d *Driver) CreateUploadURL(ctx context.Context, opts *filestore.UploadOptions) (string, error) {
	filename, _ := filestore.ResolveUploadOptions(opts, nil)
	key := d.keys.BuildKey(filename)

	u, err := d.client.PresignedPutObject(ctx, d.bucket, key, d.presignTTL)
	if err != nil {
		return "", mapError(err, "failed to presign upload").WithKey(key)
	}
	return u.String(), nil
}

// Download returns the full content stored under key.
// It returns a NotFound error carrying the key when no object exists.
func (d *Driver) Download(ctx context.Context, key string) ([]byte, error) {
	key = filestore.NormalizeKey(key)
	if key == "" {
		// Keys that normalize to nothing address no object.
		return nil, errs.NotFound(key, nil)
	}

	obj, err := d.client.GetObject(ctx, d.bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get object").WithKey(key)
	}
	defer obj.Close()

	// The SDK defers the request until the first read, so absence
	// surfaces here rather than at GetObject.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isAbsent(err) {
			return nil, errs.NotFound(key, err)
		}
		return nil, mapError(err, "failed to read object").WithKey(key)
	}
	return data, nil
}

// Delete removes the content and its metadata sidecar. S3 removals of
// missing keys already succeed, so deleting twice never errors.
func (d *Driver) Delete(ctx context.Context, key string) error {
	key = filestore.NormalizeKey(key)
	if key == "" {
		return nil
	}

	if err := d.client.RemoveObject(ctx, d.bucket, key, miniogo.RemoveObjectOptions{}); err != nil && !isAbsent(err) {
		return mapError(err, "failed to delete content").WithKey(key)
	}
	if err := d.client.RemoveObject(ctx, d.bucket, key+filestore.MetadataSuffix, miniogo.RemoveObjectOptions{}); err != nil && !isAbsent(err) {
		return mapError(err, "failed to delete metadata sidecar").WithKey(key)
	}

	d.log.With().Str("key", key).Logger().Debug("object deleted")

	return nil
}

// Exists reports whether content is stored under key.
func (d *Driver) Exists(ctx context.Context, key string) (bool, error) {
	key = filestore.NormalizeKey(key)
	if key == "" {
		return false, nil
	}

	_, err := d.client.StatObject(ctx, d.bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		if isAbsent(err) {
			return false, nil
		}
		return false, mapError(err, "failed to stat object").WithKey(key)
	}
	return true, nil
}

// GetMetadata decodes the metadata sidecar stored next to the content.
// It returns (nil, nil) when no sidecar exists.
func (d *Driver) GetMetadata(ctx context.Context, key string) (*filestore.FileMetadata, error) {
	key = filestore.NormalizeKey(key)
	if key == "" {
		return nil, nil
	}

	obj, err := d.client.GetObject(ctx, d.bucket, key+filestore.MetadataSuffix, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get metadata sidecar").WithKey(key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, mapError(err, "failed to read metadata sidecar").WithKey(key)
	}
	return filestore.DecodeMetadata(data, key)
}

// GetSourceURL returns the permanent public URL for key when a public
// base URL fronts the bucket. Buckets are private by default, so
// without a public frontend it falls back to a presigned, time-limited
// URL, the only kind of link the bucket can honor. "" when no object
// is stored under key.
func (d *Driver) GetSourceURL(ctx context.Context, key string) (string, error) {
	key = filestore.NormalizeKey(key)

	ok, err := d.Exists(ctx, key)
	if err != nil || !ok {
		return "", err
	}
	if !d.hasBaseURL {
		return d.presignGet(ctx, key)
	}
	return d.resolver.Resolve(key), nil
}

// GetDownloadURL returns a presigned, time-limited GET URL for key, or
// "" when no object is stored under it.
func (d *Driver) GetDownloadURL(ctx context.Context, key string) (string, error) {
	key = filestore.NormalizeKey(key)

	ok, err := d.Exists(ctx, key)
	if err != nil || !ok {
		return "", err
	}
	return d.presignGet(ctx, key)
}

// presignGet signs a time-limited GET URL for key. Signing is local to
// the client; no request reaches the server until the URL is used.
func (d *Driver) presignGet(ctx context.Context, key string) (string, error) {
	u, err := d.client.PresignedGetObject(ctx, d.bucket, key, d.presignTTL, nil)
	if err != nil {
		return "", mapError(err, "failed to presign download").WithKey(key)
	}
	return u.String(), nil
}
