package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._\-]+`)
)

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// SanitizeFilename reduces an uploaded file name to a safe base name,
// keeping its extension. It never returns an empty string.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeFilename.ReplaceAllString(SanitizeString(base), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "upload"
	}
	return base
}

// NormalizePage clamps paging parameters to sane bounds
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
