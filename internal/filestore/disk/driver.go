// Package disk provides a local-filesystem implementation of filestore.Store.
//
// Objects live below a single root directory. A key maps directly to a
// relative path under the root, and every stored object carries a JSON
// metadata sidecar at <path>.meta.json.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("public/uploads")
//	store, err := disk.New(cfg, log)
//	if err != nil { ... }
//
//	result, err := store.Upload(ctx, file, &filestore.UploadOptions{Filename: "report.pdf"})
package disk

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/filedepot/filedepot/internal/errs"
	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/logger"
)

// Driver is a local-filesystem implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines: generated keys
// embed a UUID, so concurrent uploads never write the same path.
type Driver struct {
	root     string
	keys     filestore.KeyBuilder
	resolver filestore.URLResolver
	log      *logger.Logger
}

// New creates the storage root if needed and returns a Driver.
func New(cfg *filestore.Config, log *logger.Logger) (*Driver, error) {
	if cfg == nil {
		cfg = filestore.DefaultConfig("")
	}
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}

	root := cfg.Root
	if root == "" {
		root = filestore.DefaultRoot
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, mapError(err, "failed to create storage root")
	}

	d := &Driver{
		root:     root,
		keys:     filestore.NewKeyBuilder(cfg.Prefix),
		resolver: filestore.NewURLResolver(cfg.BaseURL),
		log:      log.Component("disk"),
	}

	d.log.With().Str("root", root).Str("prefix", d.keys.Prefix()).Logger().Info("disk store ready")

	return d, nil
}

// Root returns the absolute or relative directory all content is stored under.
func (d *Driver) Root() string {
	return d.root
}

// --- filestore.Store implementation ---

// Upload stores content under a freshly generated key and writes its
// metadata sidecar next to it. Content and sidecar are two independent
// writes; a crash between them can leave content behind without metadata.
func (d *Driver) Upload(ctx context.Context, content io.Reader, opts *filestore.UploadOptions) (*filestore.UploadResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, mapError(err, "failed to read upload content")
	}

	filename, contentType := filestore.ResolveUploadOptions(opts, data)
	key := d.keys.BuildKey(filename)

	path := d.contentPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, mapError(err, "failed to create destination directory").WithKey(key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, mapError(err, "failed to write content").WithKey(key)
	}

	meta := filestore.NewMetadata(key, int64(len(data)), contentType)
	encoded, err := filestore.EncodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path+filestore.MetadataSuffix, encoded, 0o644); err != nil {
		return nil, mapError(err, "failed to write metadata sidecar").WithKey(key)
	}

	d.log.With().Str("key", key).Int64("size", meta.Size).Str("contentType", contentType).Logger().Debug("object stored")

	return &filestore.UploadResult{
		Key:       key,
		SourceURL: d.resolver.Resolve(key),
		Metadata:  meta,
	}, nil
}

// CreateUploadURL reports that direct client uploads are not supported:
// the disk backend has no endpoint a client could PUT to, so it returns
// "" and callers fall back to Upload.
func (d *Driver) CreateUploadURL(ctx context.Context, opts *filestore.UploadOptions) (string, error) {
	return "", nil
}

// Download returns the full content stored under key.
// It returns a NotFound error carrying the key when no object exists.
func (d *Driver) Download(ctx context.Context, key string) ([]byte, error) {
	key = filestore.NormalizeKey(key)
	if key == "" {
		// Keys made entirely of separators and traversal segments
		// normalize to nothing; the root itself is not an object.
		return nil, errs.NotFound(key, nil)
	}

	data, err := os.ReadFile(d.contentPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NotFound(key, err)
		}
		return nil, mapError(err, "failed to read content").WithKey(key)
	}
	return data, nil
}

// Delete removes the content and its metadata sidecar. Deleting a key
// that holds no object is not an error, and a missing sidecar never
// blocks removal of the content.
func (d *Driver) Delete(ctx context.Context, key string) error {
	key = filestore.NormalizeKey(key)
	if key == "" {
		return nil
	}
	path := d.contentPath(key)

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return mapError(err, "failed to delete content").WithKey(key)
	}
	if err := os.Remove(path + filestore.MetadataSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
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

	info, err := os.Stat(d.contentPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, mapError(err, "failed to stat content").WithKey(key)
	}
	return !info.IsDir(), nil
}

// GetMetadata decodes the metadata sidecar stored next to the content.
// It returns (nil, nil) when no sidecar exists, so callers can treat
// absence as an empty result rather than a failure.
func (d *Driver) GetMetadata(ctx context.Context, key string) (*filestore.FileMetadata, error) {
	key = filestore.NormalizeKey(key)
	if key == "" {
		return nil, nil
	}

	data, err := os.ReadFile(d.contentPath(key) + filestore.MetadataSuffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, mapError(err, "failed to read metadata sidecar").WithKey(key)
	}
	return filestore.DecodeMetadata(data, key)
}

// GetSourceURL returns the permanent public URL for key, or "" when no
// object is stored under it.
func (d *Driver) GetSourceURL(ctx context.Context, key string) (string, error) {
	key = filestore.NormalizeKey(key)

	ok, err := d.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return d.resolver.Resolve(key), nil
}

// GetDownloadURL returns the same URL as GetSourceURL. Disk storage has
// a single access path and no notion of expiring links.
func (d *Driver) GetDownloadURL(ctx context.Context, key string) (string, error) {
	return d.GetSourceURL(ctx, key)
}

// --- internal helpers ---

// contentPath maps a normalized, non-empty key to its location under
// the root. Normalized keys contain no dot-dot segments, so the result
// can never escape the root directory; callers reject the empty key
// first, since contentPath("") is the root itself.
func (d *Driver) contentPath(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}
