package docconv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeDocumentPDF(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		wantEncrypted bool
		wantAcroForm  bool
		wantScripting bool
		wantTextLayer bool
	}{
		{"plain text document", minimalPDF("Quarterly report body"), false, false, false, true},
		{"encryption marker", minimalPDF("Locked /Encrypt body"), true, false, false, false},
		{"form fields", minimalPDF("Fill in the /AcroForm here"), false, true, false, true},
		{"embedded scripting", minimalPDF("Runs /JavaScript on open"), false, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := analyzeDocument(tt.data, "", CategoryPDF)
			if p.Encrypted != tt.wantEncrypted {
				t.Errorf("Encrypted = %v, want %v", p.Encrypted, tt.wantEncrypted)
			}
			if p.HasAcroForm != tt.wantAcroForm {
				t.Errorf("HasAcroForm = %v, want %v", p.HasAcroForm, tt.wantAcroForm)
			}
			if p.HasScripting != tt.wantScripting {
				t.Errorf("HasScripting = %v, want %v", p.HasScripting, tt.wantScripting)
			}
			if p.HasTextLayer != tt.wantTextLayer {
				t.Errorf("HasTextLayer = %v, want %v", p.HasTextLayer, tt.wantTextLayer)
			}
		})
	}
}

func TestAnalyzeDocumentProbesPageCount(t *testing.T) {
	data := minimalPDF("Page one", "Page two", "Page three")
	path := filepath.Join(t.TempDir(), "input.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p := analyzeDocument(data, path, CategoryPDF)
	if p.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", p.PageCount)
	}
	if p.Malformed {
		t.Error("Malformed = true for a well-formed document")
	}
	if want := int64(len(data)) / 3; p.PageCount == 3 && p.BytesPerPage != want {
		t.Errorf("BytesPerPage = %d, want %d", p.BytesPerPage, want)
	}
}

func TestAnalyzeDocumentImageHeavy(t *testing.T) {
	pad := strings.Repeat("x", 200<<10)
	data := minimalPDF("/DCTDecode " + pad)
	path := filepath.Join(t.TempDir(), "scan.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p := analyzeDocument(data, path, CategoryPDF)
	if p.PageCount != 1 {
		t.Fatalf("PageCount = %d, want 1", p.PageCount)
	}
	if !p.ImageHeavy {
		t.Errorf("ImageHeavy = false with %d bytes on one page", len(data))
	}
}

func TestAnalyzeDocumentOffice(t *testing.T) {
	p := analyzeDocument(ole2Fixture(4096), "", CategoryWord)
	if !p.Malformed {
		t.Error("Malformed = false for a truncated compound file")
	}

	p = analyzeDocument(zipFixture(4096), "", CategoryExcel)
	if p.Malformed || p.Encrypted {
		t.Errorf("modern container profile = %+v, want zero flags", p)
	}
}
