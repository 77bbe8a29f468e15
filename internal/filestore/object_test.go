package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func TestResolveUploadOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     *UploadOptions
		content  []byte
		wantName string
		wantType string
	}{
		{
			name:     "nil options falls back everywhere",
			opts:     nil,
			content:  []byte("hello"),
			wantName: DefaultFilename,
			wantType: "text/plain",
		},
		{
			name:     "extension drives the type",
			opts:     &UploadOptions{Filename: "a.txt"},
			content:  []byte("hello"),
			wantName: "a.txt",
			wantType: "text/plain",
		},
		{
			name:     "explicit type wins over everything",
			opts:     &UploadOptions{Filename: "a.txt", ContentType: "application/x-custom"},
			content:  []byte("hello"),
			wantName: "a.txt",
			wantType: "application/x-custom",
		},
		{
			name:     "known extension wins over content bytes",
			opts:     &UploadOptions{Filename: "a.txt"},
			content:  pngHeader,
			wantName: "a.txt",
			wantType: "text/plain",
		},
		{
			name:     "unknown extension falls back to sniffing",
			opts:     &UploadOptions{Filename: "shot.qqq"},
			content:  pngHeader,
			wantName: "shot.qqq",
			wantType: "image/png",
		},
		{
			name:     "nothing to infer from",
			opts:     &UploadOptions{Filename: "blob.qqq"},
			content:  nil,
			wantName: "blob.qqq",
			wantType: DefaultContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename, contentType := ResolveUploadOptions(tt.opts, tt.content)
			assert.Equal(t, tt.wantName, filename)
			assert.Equal(t, tt.wantType, contentType)
		})
	}
}

func TestDetectContentTypeStripsParameters(t *testing.T) {
	// The extension table reports "text/plain; charset=utf-8"; callers
	// get the bare type.
	assert.Equal(t, "text/plain", DetectContentType("a.txt", nil))
}

func TestDetectContentTypeCommonExtensions(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"doc.pdf", "application/pdf"},
		{"data.json", "application/json"},
		{"pic.png", "image/png"},
		{"page.html", "text/html"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectContentType(tt.filename, nil), tt.filename)
	}
}
