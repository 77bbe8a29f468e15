package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLResolverResolve(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{"with base URL", "https://cdn.example.com", "uploads/a.txt", "https://cdn.example.com/uploads/a.txt"},
		{"trailing slash on base", "https://cdn.example.com/", "uploads/a.txt", "https://cdn.example.com/uploads/a.txt"},
		{"base with path", "https://cdn.example.com/assets", "uploads/a.txt", "https://cdn.example.com/assets/uploads/a.txt"},
		{"no base URL", "", "uploads/a.txt", "/uploads/a.txt"},
		{"leading slash on key", "https://cdn.example.com", "/uploads/a.txt", "https://cdn.example.com/uploads/a.txt"},
		{"backslash key", "https://cdn.example.com", `uploads\a.txt`, "https://cdn.example.com/uploads/a.txt"},
		{"empty key", "https://cdn.example.com", "", "https://cdn.example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewURLResolver(tt.baseURL)
			assert.Equal(t, tt.want, r.Resolve(tt.key))
		})
	}
}
