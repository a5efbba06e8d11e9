package docconv

import (
	"regexp"
	"strings"
)

var (
	reWhitespaceRun = regexp.MustCompile(`\s+`)
	reUnsafeChar    = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

const (
	maxFilenameBytes    = 255
	placeholderFilename = "unnamed-upload"
)

// SanitizeFilename reduces an untrusted upload filename to a safe basename:
// directory components are stripped, whitespace runs and characters outside
// [A-Za-z0-9._-] become underscores, leading dots are removed, and the result
// is capped at 255 bytes. Empty or dot-only results are replaced with a
// placeholder. The sanitized name replaces the original for all downstream
// use.
func SanitizeFilename(name string) string {
	// Strip directory components, handling both separators so a Windows
	// client cannot smuggle a path through.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	name = reWhitespaceRun.ReplaceAllString(name, "_")
	name = reUnsafeChar.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")

	if len(name) > maxFilenameBytes {
		name = name[:maxFilenameBytes]
	}

	if name == "" {
		return placeholderFilename
	}
	return name
}
