package filestore

import (
	"mime"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultFilename is used when an upload supplies no filename.
const DefaultFilename = "file"

// DefaultContentType is the fallback when neither the filename extension
// nor the content bytes identify a MIME type.
const DefaultContentType = "application/octet-stream"

// FileMetadata describes a single stored object. It is built once at
// upload time and never mutated; a new upload produces a new key with
// its own record.
type FileMetadata struct {
	// Key is the storage key the object lives under.
	Key string `json:"key"`

	// Filename is the object's display name, derived from the key's
	// final segment rather than from caller input so the record can
	// never diverge from the key.
	Filename string `json:"filename"`

	// ContentType is the bare MIME type (no parameters), e.g. "text/plain".
	ContentType string `json:"contentType"`

	// Size is the exact byte length of the stored content.
	Size int64 `json:"size"`

	// UploadedAt is when the object was stored, always in UTC.
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadOptions carries the optional caller-supplied attributes of an
// upload. A nil *UploadOptions is valid and means "all defaults":
// Filename falls back to DefaultFilename, ContentType to an inference
// from the filename extension, then from the content bytes, then to
// DefaultContentType.
type UploadOptions struct {
	Filename    string
	ContentType string
}

// UploadResult is returned once per successful upload.
type UploadResult struct {
	// Key is the handle for all subsequent operations on the object.
	Key string `json:"key"`

	// SourceURL is the externally reachable URL, or "" when the object
	// cannot be resolved to one.
	SourceURL string `json:"sourceUrl,omitempty"`

	// Metadata is the record written alongside the content.
	Metadata *FileMetadata `json:"metadata"`
}

// ResolveUploadOptions applies the defaulting rules to opts and returns
// the effective filename and content type for an upload of content.
func ResolveUploadOptions(opts *UploadOptions, content []byte) (filename, contentType string) {
	if opts != nil {
		filename = opts.Filename
		contentType = opts.ContentType
	}
	if filename == "" {
		filename = DefaultFilename
	}
	if contentType == "" {
		contentType = DetectContentType(filename, content)
	}
	return filename, contentType
}

// DetectContentType infers a MIME type for filename, consulting the
// extension table first and sniffing the content bytes when the
// extension is unknown. The returned type is bare: parameters such as
// charset are stripped.
func DetectContentType(filename string, content []byte) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return bareMIME(ct)
	}
	if len(content) > 0 {
		return bareMIME(mimetype.Detect(content).String())
	}
	return DefaultContentType
}

// bareMIME strips any parameters ("; charset=utf-8", …) from a MIME type.
func bareMIME(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
