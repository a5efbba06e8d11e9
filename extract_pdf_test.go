package docconv

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// minimalPDF assembles a small but well-formed PDF with one page per entry in
// pageTexts. Object offsets are recorded while writing so the cross-reference
// table is byte accurate.
func minimalPDF(pageTexts ...string) []byte {
	var buf bytes.Buffer
	maxObj := 3 + 2*len(pageTexts)
	offsets := make([]int, maxObj+1)

	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pageTexts))
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageTexts)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range pageTexts {
		contentObj := 5 + 2*i
		writeObj(4+2*i, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentObj))
		stream := "BT ET"
		if text != "" {
			stream = fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		}
		writeObj(contentObj, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObj+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxObj; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", maxObj+1, xref)
	return buf.Bytes()
}

// squash drops all whitespace. Word boundary reconstruction differs between
// the row-based and position-based extraction paths, so assertions compare
// squashed text.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestExtractPDFPages(t *testing.T) {
	pages, err := extractPDFPages(minimalPDF("Hello World"))
	if err != nil {
		t.Fatalf("extractPDFPages() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("extractPDFPages() returned %d pages, want 1", len(pages))
	}
	if !strings.Contains(squash(pages[0]), "HelloWorld") {
		t.Errorf("page text = %q, want it to contain %q", pages[0], "Hello World")
	}
}

func TestExtractPDFPagesKeepsBlankPages(t *testing.T) {
	pages, err := extractPDFPages(minimalPDF("First page", "", "Third page"))
	if err != nil {
		t.Fatalf("extractPDFPages() error = %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("extractPDFPages() returned %d pages, want 3", len(pages))
	}
	if pages[1] != "" {
		t.Errorf("blank page text = %q, want empty", pages[1])
	}
	if !strings.Contains(squash(pages[2]), "Thirdpage") {
		t.Errorf("page 3 text = %q, want it to contain %q", pages[2], "Third page")
	}
}

func TestExtractPDFPagesRejectsGarbage(t *testing.T) {
	junk := [][]byte{
		[]byte("not a pdf at all"),
		append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0xff}, 64)...),
	}
	for _, data := range junk {
		if _, err := extractPDFPages(data); err == nil {
			t.Errorf("extractPDFPages(%q) expected an error", data[:8])
		}
	}
}

func TestExtractPDFText(t *testing.T) {
	text, err := extractPDFText(minimalPDF("Alpha section", "", "Omega section"))
	if err != nil {
		t.Fatalf("extractPDFText() error = %v", err)
	}
	flat := squash(text)
	alpha := strings.Index(flat, "Alpha")
	omega := strings.Index(flat, "Omega")
	if alpha < 0 || omega < 0 {
		t.Fatalf("extractPDFText() = %q, want text from both pages", text)
	}
	if alpha > omega {
		t.Errorf("extractPDFText() emitted pages out of order: %q", text)
	}
}

func TestPDFHasTextLayer(t *testing.T) {
	textual := minimalPDF("Readable body text")
	blank := minimalPDF("", "", "")
	lateText := minimalPDF("", "", "Text on the last page")

	tests := []struct {
		name     string
		data     []byte
		maxPages int
		want     bool
	}{
		{"text layer present", textual, 10, true},
		{"no text anywhere", blank, 10, false},
		{"unlimited probe reaches late text", lateText, 0, true},
		{"probe stops before text", lateText, 2, false},
		{"garbage input", []byte("%PDF-1.4 broken"), 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pdfHasTextLayer(tt.data, tt.maxPages); got != tt.want {
				t.Errorf("pdfHasTextLayer() = %v, want %v", got, tt.want)
			}
		})
	}
}
