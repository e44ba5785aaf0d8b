package console

import (
	"net/url"
	"strings"
)

const uploadsPrefix = "/uploads"

// ImageURL normalizes a stored image reference for display. Historical
// data mixes absolute URLs written under old backend hosts, rooted
// relative paths, and bare filenames; everything is reduced to a path
// the current host can serve.
func ImageURL(ref string) string {
	if ref == "" {
		return ""
	}

	// absolute URL from an older deployment: keep only the path
	if strings.Contains(ref, "http") {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			ref = u.Path
		}
	}

	if strings.HasPrefix(ref, uploadsPrefix) || strings.HasPrefix(ref, "/Images") {
		return ref
	}

	// bare filename: assume the default storage prefix
	if !strings.HasPrefix(ref, "/") {
		return uploadsPrefix + "/" + ref
	}

	return ref
}
