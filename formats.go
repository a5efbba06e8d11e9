package docconv

import (
	"fmt"
	"strings"
)

// Category identifies the logical family of an uploaded document.
type Category string

const (
	CategoryPDF        Category = "pdf"
	CategoryWord       Category = "word"
	CategoryExcel      Category = "excel"
	CategoryPowerPoint Category = "powerpoint"
)

// Format identifies a concrete target document format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatXLSX     Format = "xlsx"
	FormatPPTX     Format = "pptx"
	FormatMarkdown Format = "md"
)

// OpKind distinguishes transformations that share a (source, target) pair.
// Compression and password protection are both pdf-to-pdf.
type OpKind string

const (
	OpConvert  OpKind = "convert"
	OpCompress OpKind = "compress"
	OpProtect  OpKind = "protect"
)

const (
	// DefaultMaxInputBytes caps uploads at 50 MiB.
	DefaultMaxInputBytes = 50 << 20

	minPDFBytes    = 100
	minOfficeBytes = 1000
)

// categoryMIMEs is the declared-media-type allow-list per category.
// application/octet-stream is accepted everywhere because browsers routinely
// declare it for Office uploads; the signature check still guards content.
var categoryMIMEs = map[Category][]string{
	CategoryPDF: {
		"application/pdf",
		"application/octet-stream",
	},
	CategoryWord: {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
		"application/octet-stream",
	},
	CategoryExcel: {
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
		"application/octet-stream",
	},
	CategoryPowerPoint: {
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.ms-powerpoint",
		"application/octet-stream",
	},
}

var categoryExtensions = map[Category][]string{
	CategoryPDF:        {".pdf"},
	CategoryWord:       {".docx", ".doc"},
	CategoryExcel:      {".xlsx", ".xls"},
	CategoryPowerPoint: {".pptx", ".ppt"},
}

var (
	magicPDF  = []byte("%PDF")
	magicZIP  = []byte{0x50, 0x4B, 0x03, 0x04}
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// signatureSpec names one acceptable leading-byte signature.
type signatureSpec struct {
	label string
	magic []byte
}

var (
	sigPDF  = signatureSpec{"%PDF", magicPDF}
	sigZIP  = signatureSpec{"ZIP (PK)", magicZIP}
	sigOLE2 = signatureSpec{"OLE2 compound document", magicOLE2}
)

// signaturesForExtension returns the content signatures acceptable for a
// sanitized extension within a category. Encrypted OOXML documents are OLE2
// compound files rather than ZIP archives, so the modern extensions accept
// both container signatures; the password case is then reported by the
// classifier instead of a misleading malformed-file error.
func signaturesForExtension(ext string, src Category) []signatureSpec {
	switch strings.ToLower(ext) {
	case ".pdf":
		return []signatureSpec{sigPDF}
	case ".docx", ".xlsx", ".pptx":
		return []signatureSpec{sigZIP, sigOLE2}
	case ".doc", ".xls", ".ppt":
		return []signatureSpec{sigOLE2}
	}
	if src == CategoryPDF {
		return []signatureSpec{sigPDF}
	}
	return []signatureSpec{sigZIP, sigOLE2}
}

// minSizeFor returns the minimum plausible upload size for a category.
func minSizeFor(src Category) int64 {
	if src == CategoryPDF {
		return minPDFBytes
	}
	return minOfficeBytes
}

// isOfficeContainer reports whether a format is a ZIP-based Office container.
func isOfficeContainer(f Format) bool {
	switch f {
	case FormatDOCX, FormatXLSX, FormatPPTX:
		return true
	}
	return false
}

// Extension returns the filename extension for a format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType returns the response content type for a format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatMarkdown:
		return "text/markdown"
	}
	return "application/octet-stream"
}

// ParseCategory converts a user-supplied category name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return CategoryPDF, nil
	case "word", "doc", "docx":
		return CategoryWord, nil
	case "excel", "xls", "xlsx":
		return CategoryExcel, nil
	case "powerpoint", "ppt", "pptx":
		return CategoryPowerPoint, nil
	}
	return "", fmt.Errorf("unknown source category %q", s)
}

// ParseFormat converts a user-supplied target format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pptx", "powerpoint":
		return FormatPPTX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown target format %q", s)
}

// CategoryForExtension guesses the source category from a file extension.
func CategoryForExtension(ext string) (Category, bool) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return CategoryPDF, true
	case ".docx", ".doc":
		return CategoryWord, true
	case ".xlsx", ".xls":
		return CategoryExcel, true
	case ".pptx", ".ppt":
		return CategoryPowerPoint, true
	}
	return "", false
}

// OutputFilename derives the download name for a converted document from the
// sanitized input name.
func OutputFilename(inputName string, target Format) string {
	base := inputName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "output"
	}
	return base + target.Extension()
}
