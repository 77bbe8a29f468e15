package filestore

import (
	"strings"

	"github.com/google/uuid"
)

// KeyBuilder derives safe, unique storage keys from caller-supplied
// filenames. The prefix fixed at construction namespaces every key it
// produces; prefixes are themselves normalized so configuration can
// never point keys outside the storage root.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder returns a KeyBuilder namespacing keys under prefix.
// An empty prefix produces un-namespaced keys.
func NewKeyBuilder(prefix string) KeyBuilder {
	return KeyBuilder{prefix: NormalizeKey(prefix)}
}

// BuildKey produces "<prefix>/<uuid>-<sanitizedFilename>". The embedded
// UUID makes independently built keys practically collision-free, so
// concurrent uploads need no coordination.
func (b KeyBuilder) BuildKey(filename string) string {
	name := uuid.NewString() + "-" + sanitizeFilename(filename)
	if b.prefix == "" {
		return name
	}
	return b.prefix + "/" + name
}

// Prefix returns the normalized namespace prefix, "" when unset.
func (b KeyBuilder) Prefix() string {
	return b.prefix
}

// NormalizeKey rewrites key into a form guaranteed to resolve inside the
// storage root: it splits on both slash styles, discards empty, "." and
// ".." segments, and rejoins the remainder with "/". It is total, never
// rejecting input, and must be applied to every externally supplied key
// before the key touches a backend.
//
// NormalizeKey("a/../../b") == "a/b".
func NormalizeKey(key string) string {
	segments := strings.FieldsFunc(key, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	kept := segments[:0]
	for _, seg := range segments {
		if seg == "." || seg == ".." {
			continue
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, "/")
}

// sanitizeFilename replaces every character unsafe for filesystem paths
// or URL segments with "_" and strips leading dots, so a sanitized name
// can never form a traversal segment or a hidden file. An empty result
// falls back to DefaultFilename.
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return DefaultFilename
	}
	return out
}
