package filestore

import "strings"

// URLResolver maps storage keys to externally reachable URLs. It is a
// pure string transform: no I/O happens and resolution cannot fail.
type URLResolver struct {
	baseURL string
}

// NewURLResolver returns a resolver that prefixes keys with baseURL.
// An empty baseURL yields root-relative paths ("/<key>").
func NewURLResolver(baseURL string) URLResolver {
	return URLResolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve returns the URL for key. Backslash separators are normalized
// to forward slashes so keys built on any platform resolve identically.
func (r URLResolver) Resolve(key string) string {
	k := strings.Trim(strings.ReplaceAll(key, "\\", "/"), "/")
	if r.baseURL == "" {
		return "/" + k
	}
	return r.baseURL + "/" + k
}
