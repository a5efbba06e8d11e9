package docconv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/signintech/gopdf"
	"github.com/xuri/excelize/v2"

	"github.com/drag9988/Render-Backend-sub001/internal/ole2"
	"github.com/drag9988/Render-Backend-sub001/internal/ooxml"
)

// Rebuild strategies are the degraded end of a chain: they extract whatever
// text the input still yields and reconstruct a plain document around it.
// Layout is lost, content survives.

// docxRebuildStrategy turns a PDF's text layer into a minimal Word document,
// one paragraph per extracted line.
type docxRebuildStrategy struct{}

func newDocxRebuildStrategy() *docxRebuildStrategy {
	return &docxRebuildStrategy{}
}

func (c *docxRebuildStrategy) Name() string { return "docx-rebuild" }

func (c *docxRebuildStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *docxRebuildStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := extractPDFPages(job.Request.Data)
	if err != nil {
		return nil, err
	}

	var paras []ooxml.DocxParagraph
	for _, page := range pages {
		if page == "" {
			continue
		}
		if len(paras) > 0 {
			paras = append(paras, ooxml.DocxParagraph{})
		}
		for _, line := range strings.Split(page, "\n") {
			paras = append(paras, ooxml.DocxParagraph{Text: line})
		}
	}
	if len(paras) == 0 {
		return nil, fmt.Errorf("no extractable text")
	}

	var buf bytes.Buffer
	if err := ooxml.WriteDocx(&buf, paras); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xlsxRebuildStrategy turns a PDF's text layer into a workbook with one
// worksheet per page and one line per row.
type xlsxRebuildStrategy struct{}

func newXlsxRebuildStrategy() *xlsxRebuildStrategy {
	return &xlsxRebuildStrategy{}
}

func (c *xlsxRebuildStrategy) Name() string { return "xlsx-rebuild" }

func (c *xlsxRebuildStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *xlsxRebuildStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := extractPDFPages(job.Request.Data)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := 0
	for i, page := range pages {
		if page == "" {
			continue
		}
		name := fmt.Sprintf("Page %d", i+1)
		if sheets == 0 {
			f.SetSheetName(f.GetSheetName(0), name)
		} else {
			if _, err := f.NewSheet(name); err != nil {
				continue
			}
		}
		sheets++

		for rowIdx, line := range strings.Split(page, "\n") {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				continue
			}
			f.SetCellValue(name, cell, line)
		}
	}
	if sheets == 0 {
		return nil, fmt.Errorf("no extractable text")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfRebuildStrategy extracts whatever text an office document yields and
// typesets it into a plain PDF.
type pdfRebuildStrategy struct{}

func newPDFRebuildStrategy() *pdfRebuildStrategy {
	return &pdfRebuildStrategy{}
}

func (c *pdfRebuildStrategy) Name() string { return "pdf-rebuild" }

func (c *pdfRebuildStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *pdfRebuildStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := extractSourceText(job.Request)
	if err != nil {
		return nil, err
	}
	return buildTextPDF(text)
}

// extractSourceText flattens the request payload to plain text. Modern
// containers get their native extractor; legacy binaries fall back to
// harvesting text runs from the main document stream.
func extractSourceText(req *Request) (string, error) {
	data := req.Data

	switch req.Source {
	case CategoryWord:
		if text, err := extractDocxText(data); err == nil && text != "" {
			return text, nil
		}
		if text := harvestLegacyStream(data, "WordDocument"); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no extractable text")

	case CategoryExcel:
		tables, err := extractSheetTables(data)
		if err != nil {
			return "", err
		}
		if text := sheetsToText(tables); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no extractable text")

	case CategoryPowerPoint:
		if text, err := extractPptxText(data); err == nil && text != "" {
			return text, nil
		}
		if text := harvestLegacyStream(data, "PowerPoint Document"); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no extractable text")

	case CategoryPDF:
		return extractPDFText(data)
	}
	return "", fmt.Errorf("no text extractor for source %q", req.Source)
}

// harvestLegacyStream salvages text runs from an OLE2 stream.
func harvestLegacyStream(data []byte, stream string) string {
	if !bytes.HasPrefix(data, magicOLE2) {
		return ""
	}
	raw, err := ole2.ReadStream(bytes.NewReader(data), stream)
	if err != nil {
		return ""
	}
	return harvestText(raw, 8)
}

// Probed before typesetting; the PDF builder embeds a TTF font and has no
// built-in fallback.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
}

// buildTextPDF typesets plain text into an A4 PDF with word wrapping.
func buildTextPDF(text string) ([]byte, error) {
	fontPath := ""
	for _, p := range fontCandidates {
		if _, err := os.Stat(p); err == nil {
			fontPath = p
			break
		}
	}
	if fontPath == "" {
		return nil, fmt.Errorf("no usable TTF font found")
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFont("body", fontPath); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	if err := pdf.SetFont("body", "", 11); err != nil {
		return nil, fmt.Errorf("set font: %w", err)
	}

	const (
		marginX    = 40.0
		marginY    = 48.0
		lineHeight = 16.0
	)
	pageH := gopdf.PageSizeA4.H
	maxW := gopdf.PageSizeA4.W - 2*marginX

	pdf.AddPage()
	y := marginY
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range wrapPDFLine(&pdf, line, maxW) {
			if y > pageH-marginY {
				pdf.AddPage()
				y = marginY
			}
			if chunk != "" {
				pdf.SetX(marginX)
				pdf.SetY(y)
				// Glyphs outside the embedded font fail to render;
				// dropping the chunk beats aborting the document.
				if err := pdf.Cell(nil, chunk); err != nil {
					y += lineHeight
					continue
				}
			}
			y += lineHeight
		}
	}

	return pdf.GetBytesPdfReturnErr()
}

// wrapPDFLine splits a line into chunks that fit maxW. Words longer than
// the full width stay unbroken.
func wrapPDFLine(pdf *gopdf.GoPdf, line string, maxW float64) []string {
	if strings.TrimSpace(line) == "" {
		return []string{""}
	}
	if w, err := pdf.MeasureTextWidth(line); err != nil || w <= maxW {
		return []string{line}
	}

	var chunks []string
	current := ""
	for _, word := range strings.Fields(line) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, err := pdf.MeasureTextWidth(candidate); err == nil && w > maxW && current != "" {
			chunks = append(chunks, current)
			current = word
		} else {
			current = candidate
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
