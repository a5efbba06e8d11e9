// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docconv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// sheetTable is one worksheet's cell grid.
type sheetTable struct {
	Name string
	Rows [][]string
}

// extractSheetTables reads every worksheet of a workbook, dispatching on the
// container signature between modern and legacy formats.
func extractSheetTables(data []byte) ([]sheetTable, error) {
	if bytes.HasPrefix(data, magicOLE2) {
		return extractXlsTables(data)
	}
	return extractXlsxTables(data)
}

func extractXlsxTables(data []byte) ([]sheetTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []sheetTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) == 0 {
			continue
		}
		tables = append(tables, sheetTable{Name: sheet, Rows: rows})
	}
	return tables, nil
}

// extractXlsTables reads a legacy BIFF workbook. The reader only accepts a
// file path, so the bytes take a round trip through a temp file.
func extractXlsTables(data []byte) ([]sheetTable, error) {
	tmpFile, err := os.CreateTemp("", "docconv-*.xls")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, bytes.NewReader(data)); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	wb, err := xls.Open(tmpPath, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	var tables []sheetTable
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		sheetName := sheet.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		maxRow := int(sheet.MaxRow)
		for rowIdx := 0; rowIdx <= maxRow; rowIdx++ {
			row := sheet.Row(rowIdx)
			if row == nil {
				continue
			}

			var cells []string
			lastCol := row.LastCol()
			for colIdx := 0; colIdx < lastCol; colIdx++ {
				cells = append(cells, row.Col(colIdx))
			}
			rows = append(rows, cells)
		}

		if len(rows) == 0 {
			continue
		}
		tables = append(tables, sheetTable{Name: sheetName, Rows: rows})
	}
	return tables, nil
}

// sheetsToMarkdown renders each worksheet as a heading plus a table.
func sheetsToMarkdown(tables []sheetTable) string {
	var md strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&md, "## %s\n", t.Name)
		md.WriteString(renderMarkdownTable(t.Rows))
		md.WriteString("\n")
	}
	return md.String()
}

// sheetsToText flattens worksheets to tab-separated lines.
func sheetsToText(tables []sheetTable) string {
	var sb strings.Builder
	for _, t := range tables {
		sb.WriteString(t.Name)
		sb.WriteString("\n")
		for _, row := range t.Rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// renderMarkdownTable renders a 2D string slice as a markdown table.
func renderMarkdownTable(records [][]string) string {
	if len(records) == 0 {
		return ""
	}

	// Determine the number of columns from the header
	numCols := len(records[0])

	var b strings.Builder

	// Header row
	b.WriteString("| ")
	for i := 0; i < numCols; i++ {
		if i < len(records[0]) {
			b.WriteString(records[0][i])
		}
		b.WriteString(" | ")
	}
	b.WriteString("\n")

	// Separator row
	b.WriteString("| ")
	for i := 0; i < numCols; i++ {
		b.WriteString("---")
		b.WriteString(" | ")
	}
	b.WriteString("\n")

	// Data rows
	for _, row := range records[1:] {
		b.WriteString("| ")
		for i := 0; i < numCols; i++ {
			if i < len(row) {
				b.WriteString(row[i])
			}
			b.WriteString(" | ")
		}
		b.WriteString("\n")
	}

	return b.String()
}
