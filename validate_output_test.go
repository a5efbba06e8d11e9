package docconv

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateOutput(t *testing.T) {
	tests := []struct {
		name      string
		out       []byte
		target    Format
		op        OpKind
		inputSize int64
		wantErr   bool
		wantSub   bool
	}{
		{"valid pdf", pdfFixture(200), FormatPDF, OpConvert, 1000, false, false},
		{"below minimum size", []byte("ok"), FormatPDF, OpConvert, 1000, true, false},
		{"just under minimum size", pdfFixture(99), FormatPDF, OpConvert, 1000, true, false},
		{"pdf without signature", bytes.Repeat([]byte{'x'}, 200), FormatPDF, OpConvert, 1000, true, false},
		{"valid docx container", zipFixture(200), FormatDOCX, OpConvert, 1000, false, false},
		{"docx without container signature", bytes.Repeat([]byte{'x'}, 200), FormatDOCX, OpConvert, 1000, true, false},
		{"valid xlsx container", zipFixture(200), FormatXLSX, OpConvert, 1000, false, false},
		{"valid pptx container", zipFixture(200), FormatPPTX, OpConvert, 1000, false, false},
		{"markdown is size checked only", []byte(strings.Repeat("# heading\n", 15)), FormatMarkdown, OpConvert, 1000, false, false},
		{"compression that shrinks", pdfFixture(500), FormatPDF, OpCompress, 1000, false, false},
		{"compression that grows", pdfFixture(1500), FormatPDF, OpCompress, 1000, false, true},
		{"compression with equal size", pdfFixture(1000), FormatPDF, OpCompress, 1000, false, false},
		{"grown output still needs the signature", bytes.Repeat([]byte{'x'}, 1500), FormatPDF, OpCompress, 1000, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateOutput(tt.out, tt.target, tt.op, tt.inputSize)
			if got := verdict.Err != nil; got != tt.wantErr {
				t.Errorf("Err = %v, want error=%v", verdict.Err, tt.wantErr)
			}
			if verdict.SubstituteInput != tt.wantSub {
				t.Errorf("SubstituteInput = %v, want %v", verdict.SubstituteInput, tt.wantSub)
			}
		})
	}
}
