package docconv

import (
	"context"
	"fmt"
	"os"
)

// scriptPDFToDocx rebuilds a Word document from a PDF with pdf2docx, which
// recovers layout, tables and images rather than flowing bare text.
const scriptPDFToDocx = `import sys

from pdf2docx import Converter

src, dst = sys.argv[1], sys.argv[2]
cv = Converter(src)
try:
    cv.convert(dst)
finally:
    cv.close()
`

// scriptPDFToXlsx extracts tables per page with pdfplumber and writes one
// worksheet per page with openpyxl. Pages without detectable tables fall
// back to one text line per row.
const scriptPDFToXlsx = `import sys

import pdfplumber
from openpyxl import Workbook

src, dst = sys.argv[1], sys.argv[2]
wb = Workbook()
wb.remove(wb.active)
with pdfplumber.open(src) as pdf:
    for i, page in enumerate(pdf.pages, start=1):
        ws = wb.create_sheet(title="Page %d" % i)
        tables = page.extract_tables()
        if tables:
            row_idx = 1
            for table in tables:
                for row in table:
                    for col_idx, cell in enumerate(row, start=1):
                        if cell is not None:
                            ws.cell(row=row_idx, column=col_idx, value=cell)
                    row_idx += 1
                row_idx += 1
        else:
            text = page.extract_text() or ""
            for row_idx, line in enumerate(text.splitlines(), start=1):
                ws.cell(row=row_idx, column=1, value=line)
if not wb.sheetnames:
    wb.create_sheet(title="Empty")
wb.save(dst)
`

// scriptStrategy runs an embedded Python program against the materialized
// input. The program is written into the workspace on every attempt, so
// nothing needs to be installed beyond the interpreter and its packages.
type scriptStrategy struct {
	python string
	name   string
	script string
	outExt string
}

func newScriptStrategy(python, name, script, outExt string) *scriptStrategy {
	return &scriptStrategy{python: python, name: name, script: script, outExt: outExt}
}

func (c *scriptStrategy) Name() string { return c.name }

func (c *scriptStrategy) Kind() StrategyKind { return StrategyScript }

func (c *scriptStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	bin, err := lookupTool(c.python, pythonCandidates, "python3")
	if err != nil {
		return nil, err
	}

	scriptPath, err := job.Workspace.Materialize([]byte(c.script), c.name+".py")
	if err != nil {
		return nil, err
	}
	outPath := job.Workspace.Path(c.name + "-" + shortSuffix() + c.outExt)

	if err := runCommand(ctx, bin, scriptPath, job.InputPath, outPath); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("script wrote no output: %w", err)
	}
	return out, nil
}
