package docconv

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// harvestText pulls readable text runs out of a raw binary stream. Legacy
// Office files store text as UTF-16LE or single-byte runs between binary
// records; runs shorter than minRun are discarded as noise.
func harvestText(raw []byte, minRun int) string {
	wide := harvestUTF16Runs(raw, 0, minRun)
	if odd := harvestUTF16Runs(raw, 1, minRun); utf8.RuneCountInString(odd) > utf8.RuneCountInString(wide) {
		wide = odd
	}
	narrow := harvestByteRuns(raw, minRun)

	if utf8.RuneCountInString(wide) >= utf8.RuneCountInString(narrow) {
		return wide
	}
	return narrow
}

// harvestUTF16Runs collects printable UTF-16LE code unit runs starting at
// the given byte offset. Text regions are not always even-aligned, so the
// caller scans both alignments.
func harvestUTF16Runs(raw []byte, offset, minRun int) string {
	var sb strings.Builder
	var run []uint16
	flush := func() {
		if len(run) >= minRun {
			sb.WriteString(string(utf16.Decode(run)))
			sb.WriteString("\n")
		}
		run = run[:0]
	}

	for i := offset; i+1 < len(raw); i += 2 {
		u := uint16(raw[i]) | uint16(raw[i+1])<<8
		if isTextCodeUnit(u) {
			run = append(run, u)
		} else {
			flush()
		}
	}
	flush()
	return strings.TrimSpace(sb.String())
}

func isTextCodeUnit(u uint16) bool {
	r := rune(u)
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	if r < 0x20 || r == 0x7F {
		return false
	}
	// Surrogates only make sense in pairs and scans treat them as noise.
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	return r == ' ' || unicode.IsPrint(r)
}

// harvestByteRuns collects single-byte text runs and decodes them with
// charset detection, which catches legacy code page content.
func harvestByteRuns(raw []byte, minRun int) string {
	var sb strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minRun {
			sb.Write(run)
			sb.WriteString("\n")
		}
		run = run[:0]
	}

	for _, b := range raw {
		if b == '\n' || b == '\r' || b == '\t' || (b >= 0x20 && b != 0x7F) {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()
	return strings.TrimSpace(decodeWithDetection([]byte(sb.String())))
}
