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

// Pair keys a strategy chain by source category, target format and
// operation. Compression and protection share the pdf/pdf pair and are told
// apart by the operation.
type Pair struct {
	Source Category
	Target Format
	Op     OpKind
}

// RegisterChain installs the ordered strategy list for one conversion pair,
// replacing any previously registered chain. The order given is the attempt
// order.
func (s *Service) RegisterChain(src Category, target Format, op OpKind, strategies ...Strategy) {
	s.chains[Pair{Source: src, Target: target, Op: op}] = strategies
}

// registerBuiltins installs the default chains. Each chain runs remote first
// when a remote engine is configured, then the enhanced local engine, then
// the plain local engine, with a degraded rebuild last where a rebuild
// produces something useful. The table is fixed at construction.
func (s *Service) registerBuiltins() {
	soffice := s.tools.soffice
	python := s.tools.python

	withRemote := func(rest ...Strategy) []Strategy {
		if s.remoteURL == "" {
			return rest
		}
		return append([]Strategy{newRemoteStrategy(s.remoteURL, s.httpClient)}, rest...)
	}

	s.RegisterChain(CategoryPDF, FormatDOCX, OpConvert, withRemote(
		newSofficeStrategy(soffice, "soffice-pdf-import", "docx:MS Word 2007 XML", "writer_pdf_import", ".docx"),
		newScriptStrategy(python, "pdf2docx", scriptPDFToDocx, ".docx"),
		newSofficeStrategy(soffice, "soffice", "docx", "", ".docx"),
		newDocxRebuildStrategy(),
	)...)

	s.RegisterChain(CategoryPDF, FormatXLSX, OpConvert, withRemote(
		newSofficeStrategy(soffice, "soffice-pdf-import", "xlsx:Calc MS Excel 2007 XML", "writer_pdf_import", ".xlsx"),
		newScriptStrategy(python, "pdfplumber", scriptPDFToXlsx, ".xlsx"),
		newSofficeStrategy(soffice, "soffice", "xlsx", "", ".xlsx"),
		newXlsxRebuildStrategy(),
	)...)

	// Slide reconstruction from flat text loses everything worth keeping,
	// so this pair ends at the plain engine.
	s.RegisterChain(CategoryPDF, FormatPPTX, OpConvert, withRemote(
		newSofficeStrategy(soffice, "soffice-pdf-import", "pptx:Impress MS PowerPoint 2007 XML", "impress_pdf_import", ".pptx"),
		newSofficeStrategy(soffice, "soffice", "pptx", "", ".pptx"),
	)...)

	exportFilters := map[Category]string{
		CategoryWord:       "pdf:writer_pdf_Export",
		CategoryExcel:      "pdf:calc_pdf_Export",
		CategoryPowerPoint: "pdf:impress_pdf_Export",
	}
	for src, filter := range exportFilters {
		s.RegisterChain(src, FormatPDF, OpConvert, withRemote(
			newSofficeStrategy(soffice, "soffice-"+string(src)+"-export", filter, "", ".pdf"),
			newSofficeStrategy(soffice, "soffice", "pdf", "", ".pdf"),
			newPDFRebuildStrategy(),
		)...)
	}

	for _, src := range []Category{CategoryPDF, CategoryWord, CategoryExcel, CategoryPowerPoint} {
		s.RegisterChain(src, FormatMarkdown, OpConvert,
			newSofficeHTMLStrategy(soffice),
			newNativeExtractStrategy(),
		)
	}

	s.RegisterChain(CategoryPDF, FormatPDF, OpCompress,
		newGhostscriptStrategy(s.tools.ghostscript),
		newPdfcpuOptimizeStrategy(),
		newQpdfCompressStrategy(s.tools.qpdf),
	)

	s.RegisterChain(CategoryPDF, FormatPDF, OpProtect,
		newQpdfEncryptStrategy(s.tools.qpdf),
		newPdfcpuEncryptStrategy(),
	)
}
