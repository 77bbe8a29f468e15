package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("")
	assert.Equal(t, ProviderDisk, cfg.Provider)
	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, "uploads", cfg.Prefix)
	assert.Empty(t, cfg.BaseURL)

	cfg = DefaultConfig("/var/data/blobs")
	assert.Equal(t, "/var/data/blobs", cfg.Root)
}

func TestDefaultMinIOConfig(t *testing.T) {
	cfg := DefaultMinIOConfig("localhost:9000", "minioadmin", "minioadmin", "media")

	assert.Equal(t, ProviderMinIO, cfg.Provider)
	assert.Equal(t, "localhost:9000", cfg.Endpoint)
	assert.Equal(t, "minioadmin", cfg.AccessKey)
	assert.Equal(t, "minioadmin", cfg.SecretKey)
	assert.Equal(t, "media", cfg.Bucket)
	assert.Equal(t, "uploads", cfg.Prefix)
	assert.False(t, cfg.UseSSL)
	assert.Equal(t, DefaultPresignTTL, cfg.PresignTTL)
}
