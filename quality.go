package docconv

import "strings"

// CompressionProfile names a Ghostscript pdfwrite downsampling profile.
type CompressionProfile string

const (
	ProfileScreen  CompressionProfile = "screen"
	ProfileEbook   CompressionProfile = "ebook"
	ProfilePrinter CompressionProfile = "printer"
)

// compressionProfileFor maps the caller's quality hint and the preflight
// profile to a Ghostscript profile. Image-heavy documents default to the
// aggressive profile since raster content is where the bytes are.
func compressionProfileFor(quality string, prof *DocumentProfile) CompressionProfile {
	switch strings.ToLower(strings.TrimSpace(quality)) {
	case "low", "screen", "small":
		return ProfileScreen
	case "high", "printer", "prepress":
		return ProfilePrinter
	case "medium", "ebook":
		return ProfileEbook
	}

	if prof != nil && prof.ImageHeavy {
		return ProfileScreen
	}
	return ProfileEbook
}
