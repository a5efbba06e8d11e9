package docconv

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"pdf", CategoryPDF, false},
		{"word", CategoryWord, false},
		{"docx", CategoryWord, false},
		{"DOC", CategoryWord, false},
		{"excel", CategoryExcel, false},
		{" xlsx ", CategoryExcel, false},
		{"powerpoint", CategoryPowerPoint, false},
		{"ppt", CategoryPowerPoint, false},
		{"markdown", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, want error=%v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{"docx", FormatDOCX, false},
		{"word", FormatDOCX, false},
		{"xlsx", FormatXLSX, false},
		{"pptx", FormatPPTX, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"html", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, want error=%v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryForExtension(t *testing.T) {
	tests := []struct {
		ext    string
		want   Category
		wantOK bool
	}{
		{".pdf", CategoryPDF, true},
		{".PDF", CategoryPDF, true},
		{".docx", CategoryWord, true},
		{".doc", CategoryWord, true},
		{".xlsx", CategoryExcel, true},
		{".xls", CategoryExcel, true},
		{".pptx", CategoryPowerPoint, true},
		{".ppt", CategoryPowerPoint, true},
		{".txt", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := CategoryForExtension(tt.ext)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("CategoryForExtension(%q) = %q, %v, want %q, %v", tt.ext, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		input  string
		target Format
		want   string
	}{
		{"report.pdf", FormatDOCX, "report.docx"},
		{"report.pdf", FormatMarkdown, "report.md"},
		{"deck.pptx", FormatPDF, "deck.pdf"},
		{"noext", FormatPDF, "noext.pdf"},
		{"archive.tar.gz", FormatPDF, "archive.tar.pdf"},
		{".hidden", FormatPDF, ".hidden.pdf"},
		{"", FormatPDF, "output.pdf"},
	}

	for _, tt := range tests {
		got := OutputFilename(tt.input, tt.target)
		if got != tt.want {
			t.Errorf("OutputFilename(%q, %q) = %q, want %q", tt.input, tt.target, got, tt.want)
		}
	}
}

func TestFormatMIMEType(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatPDF, "application/pdf"},
		{FormatDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{FormatXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{FormatPPTX, "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		{FormatMarkdown, "text/markdown"},
	}

	for _, tt := range tests {
		if got := tt.format.MIMEType(); got != tt.want {
			t.Errorf("%q.MIMEType() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestSignaturesForExtension(t *testing.T) {
	ooxml := signaturesForExtension(".docx", CategoryWord)
	if len(ooxml) != 2 {
		t.Errorf("signatures for .docx = %d, want 2 (ZIP and OLE2)", len(ooxml))
	}

	legacy := signaturesForExtension(".doc", CategoryWord)
	if len(legacy) != 1 || legacy[0].label != sigOLE2.label {
		t.Errorf("signatures for .doc = %v, want OLE2 only", legacy)
	}

	pdf := signaturesForExtension(".pdf", CategoryPDF)
	if len(pdf) != 1 || pdf[0].label != sigPDF.label {
		t.Errorf("signatures for .pdf = %v, want %%PDF only", pdf)
	}
}
