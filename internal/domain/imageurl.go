package domain

import "strings"

// ResolveImageURL resolves a catalog image URL against the backend origin.
// Absolute URLs pass through unchanged; root-relative paths are joined to the
// origin. The function is idempotent: resolving an already-resolved URL
// returns it unchanged. This is the single place the relative-path convention
// is handled; display code must never re-implement it.
func ResolveImageURL(origin, raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	origin = strings.TrimSuffix(origin, "/")
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return origin + raw
}
