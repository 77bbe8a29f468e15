package filestore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/filedepot/filedepot/internal/errs"
)

// MetadataSuffix is appended to a storage key to address its metadata
// record. On disk that is a sidecar file next to the content; remote
// backends store a sibling object under the same name.
const MetadataSuffix = ".meta.json"

// timestampLayout fixes millisecond precision so encoded timestamps are
// constant-width and sort lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// metadataRecord is the wire form of FileMetadata. The timestamp travels
// as text so the sidecar stays readable and sortable.
type metadataRecord struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploadedAt"`
}

// NewMetadata builds the record for a freshly stored object. The upload
// time is stamped now (UTC); the filename is derived from the key's final
// segment, never from caller input, so record and key cannot diverge.
func NewMetadata(key string, size int64, contentType string) *FileMetadata {
	return &FileMetadata{
		Key:         key,
		Filename:    keyFilename(key),
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}
}

// EncodeMetadata renders m as its stable JSON wire form.
func EncodeMetadata(m *FileMetadata) ([]byte, error) {
	rec := metadataRecord{
		Key:         m.Key,
		Filename:    m.Filename,
		ContentType: m.ContentType,
		Size:        m.Size,
		UploadedAt:  m.UploadedAt.UTC().Format(timestampLayout),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindCorrupted, "failed to encode metadata", err)
	}
	return data, nil
}

// DecodeMetadata reconstructs a FileMetadata from its wire form. The
// stored key field is overridden with the key used to fetch the record,
// since a record is addressed by location, not by self-description. A
// record that cannot be decoded yields a Corrupted error.
func DecodeMetadata(data []byte, key string) (*FileMetadata, error) {
	var rec metadataRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errs.Wrap(errs.ErrKindCorrupted, "failed to decode metadata", err).WithKey(key)
	}

	var uploadedAt time.Time
	if rec.UploadedAt != "" {
		t, err := time.Parse(time.RFC3339, rec.UploadedAt)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindCorrupted, "failed to parse metadata timestamp", err).WithKey(key)
		}
		uploadedAt = t
	}

	return &FileMetadata{
		Key:         key,
		Filename:    rec.Filename,
		ContentType: rec.ContentType,
		Size:        rec.Size,
		UploadedAt:  uploadedAt,
	}, nil
}

// keyFilename returns the final segment of a slash-delimited key.
func keyFilename(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}
