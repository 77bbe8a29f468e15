package filestore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/filedepot/internal/errs"
)

func TestNewMetadata(t *testing.T) {
	m := NewMetadata("uploads/abc-a.txt", 5, "text/plain")

	assert.Equal(t, "uploads/abc-a.txt", m.Key)
	assert.Equal(t, "abc-a.txt", m.Filename, "filename comes from the key's final segment")
	assert.Equal(t, "text/plain", m.ContentType)
	assert.Equal(t, int64(5), m.Size)
	assert.Equal(t, time.UTC, m.UploadedAt.Location())
	assert.WithinDuration(t, time.Now().UTC(), m.UploadedAt, 5*time.Second)
}

func TestNewMetadataFilenameWithoutSlash(t *testing.T) {
	m := NewMetadata("solo.bin", 1, "application/octet-stream")
	assert.Equal(t, "solo.bin", m.Filename)
}

func TestMetadataRoundTrip(t *testing.T) {
	orig := NewMetadata("uploads/abc-a.txt", 5, "text/plain")

	data, err := EncodeMetadata(orig)
	require.NoError(t, err)

	got, err := DecodeMetadata(data, orig.Key)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, orig.Key, got.Key)
	assert.Equal(t, orig.Filename, got.Filename)
	assert.Equal(t, orig.ContentType, got.ContentType)
	assert.Equal(t, orig.Size, got.Size)
	// The wire form carries millisecond precision.
	assert.Equal(t, orig.UploadedAt.Truncate(time.Millisecond), got.UploadedAt)
}

func TestEncodeMetadataWireForm(t *testing.T) {
	m := &FileMetadata{
		Key:         "uploads/abc-a.txt",
		Filename:    "abc-a.txt",
		ContentType: "text/plain",
		Size:        5,
		UploadedAt:  time.Date(2026, 3, 9, 14, 30, 5, 120_000_000, time.UTC),
	}

	data, err := EncodeMetadata(m)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "uploads/abc-a.txt", raw["key"])
	assert.Equal(t, "abc-a.txt", raw["filename"])
	assert.Equal(t, "text/plain", raw["contentType"])
	assert.Equal(t, float64(5), raw["size"])
	assert.Equal(t, "2026-03-09T14:30:05.120Z", raw["uploadedAt"])
}

func TestDecodeMetadataOverridesStoredKey(t *testing.T) {
	data := []byte(`{"key":"somewhere/else","filename":"abc-a.txt","contentType":"text/plain","size":5,"uploadedAt":"2026-03-09T14:30:05.120Z"}`)

	got, err := DecodeMetadata(data, "uploads/actual")
	require.NoError(t, err)
	assert.Equal(t, "uploads/actual", got.Key, "the record is addressed by location, not self-description")
}

func TestDecodeMetadataMissingTimestamp(t *testing.T) {
	data := []byte(`{"filename":"abc-a.txt","contentType":"text/plain","size":5}`)

	got, err := DecodeMetadata(data, "uploads/abc-a.txt")
	require.NoError(t, err)
	assert.True(t, got.UploadedAt.IsZero())
}

func TestDecodeMetadataCorrupted(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{not json`},
		{"unparseable timestamp", `{"filename":"f","size":1,"uploadedAt":"yesterday"}`},
		{"wrong field type", `{"size":"five"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMetadata([]byte(tt.data), "uploads/broken")
			require.Error(t, err)
			assert.True(t, errs.IsCorrupted(err))
			assert.Equal(t, "uploads/broken", errs.Key(err))
		})
	}
}

func TestTimestampsSortLexicographically(t *testing.T) {
	// Constant-width millisecond encoding keeps byte order equal to
	// time order, including across digit-width boundaries.
	times := []time.Time{
		time.Date(2026, 1, 2, 9, 59, 59, 999_000_000, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 1_000_000, time.UTC),
		time.Date(2026, 12, 31, 23, 59, 59, 999_000_000, time.UTC),
	}

	var prev string
	for i, ts := range times {
		enc := ts.Format(timestampLayout)
		if i > 0 {
			assert.Less(t, prev, enc)
		}
		prev = enc
	}
}
