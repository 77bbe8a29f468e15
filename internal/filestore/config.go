package filestore

import "time"

// Provider identifies the object-storage backend.
type Provider string

const (
	ProviderDisk  Provider = "disk"
	ProviderMinIO Provider = "minio"
)

// DefaultRoot is the conventional public-assets directory the disk
// backend stores under when no root is configured.
const DefaultRoot = "public/uploads"

// DefaultPresignTTL bounds the lifetime of presigned URLs issued by
// remote backends.
const DefaultPresignTTL = 15 * time.Minute

// Config holds all settings needed to construct a storage backend.
// It is read once at construction; operations never consult ambient
// configuration, which keeps backends deterministic and lets tests point
// them at throwaway roots.
type Config struct {
	// Provider is the storage backend (e.g. ProviderDisk).
	Provider Provider

	// Prefix namespaces every generated key (e.g. "uploads").
	// May be empty.
	Prefix string

	// BaseURL is the public base URL prepended to keys when resolving
	// source URLs. When empty the disk backend resolves root-relative
	// paths and the MinIO backend falls back to presigned URLs.
	BaseURL string

	// Root is the filesystem directory the disk backend stores under.
	// Defaults to DefaultRoot when empty.
	Root string

	// Endpoint is the host:port of the S3-compatible server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// Bucket is the bucket objects are stored in.
	Bucket string

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// PresignTTL is how long presigned upload/download URLs stay valid.
	// Defaults to DefaultPresignTTL when zero.
	PresignTTL time.Duration
}

// DefaultConfig returns a disk-backed config storing under root.
func DefaultConfig(root string) *Config {
	if root == "" {
		root = DefaultRoot
	}
	return &Config{
		Provider: ProviderDisk,
		Root:     root,
		Prefix:   "uploads",
	}
}

// DefaultMinIOConfig returns a sensible local-dev config for MinIO.
func DefaultMinIOConfig(endpoint, accessKey, secretKey, bucket string) *Config {
	return &Config{
		Provider:   ProviderMinIO,
		Endpoint:   endpoint,
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		Bucket:     bucket,
		Prefix:     "uploads",
		UseSSL:     false,
		PresignTTL: DefaultPresignTTL,
	}
}
