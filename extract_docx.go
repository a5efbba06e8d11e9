package docconv

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/drag9988/Render-Backend-sub001/internal/docxmath"
	"github.com/drag9988/Render-Backend-sub001/internal/ooxml"
)

// docxBlock is one flow element of a Word document body.
type docxBlock struct {
	text    string
	heading int // 1-6, 0 for body text
	list    bool
	table   [][]string
}

// extractDocxBlocks parses word/document.xml into an ordered block list.
// Formatting runs are flattened to text; headings, list items, hyperlinks
// and tables survive.
func extractDocxBlocks(data []byte) ([]docxBlock, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX container: %w", err)
	}

	styles := parseDocxStyles(zr)
	rels, _ := ooxml.ParseRelationshipsFromReader(zr, "word/_rels/document.xml.rels")

	docData, err := ooxml.ReadFileFromZip(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}
	docData = replaceDocxMath(docData)

	decoder := xml.NewDecoder(bytes.NewReader(docData))

	type state struct {
		inText      bool
		inTableCell bool
		inList      bool
		inHyper     bool
		hyperRef    string
		styleID     string
	}

	var (
		s           state
		blocks      []docxBlock
		textBuf     strings.Builder
		currentPara strings.Builder
		cellContent strings.Builder
		tableRows   [][]string
		currentRow  []string
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				// The math rewrite can nest paragraphs. Flush pending text
				// so the inner paragraph does not swallow it.
				if text := strings.TrimSpace(currentPara.String()); text != "" && !s.inTableCell {
					blocks = append(blocks, docxBlock{
						text:    text,
						heading: docxHeadingLevel(s.styleID, styles),
						list:    s.inList,
					})
				}
				currentPara.Reset()
				s.styleID = ""
				s.inList = false

			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						s.styleID = attr.Value
					}
				}

			case "numPr":
				s.inList = true

			case "t":
				s.inText = true
				textBuf.Reset()

			case "tab":
				currentPara.WriteString("\t")

			case "br":
				currentPara.WriteString("\n")

			case "hyperlink":
				s.inHyper = true
				for _, attr := range t.Attr {
					if attr.Name.Space == "http://schemas.openxmlformats.org/officeDocument/2006/relationships" && attr.Name.Local == "id" {
						if rel, ok := rels[attr.Value]; ok {
							s.hyperRef = rel.Target
						}
					}
				}

			case "tbl":
				tableRows = nil

			case "tr":
				currentRow = nil

			case "tc":
				s.inTableCell = true
				cellContent.Reset()
			}

		case xml.CharData:
			if s.inText {
				textBuf.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if !s.inText {
					break
				}
				text := textBuf.String()
				if s.inHyper && s.hyperRef != "" {
					text = "[" + text + "](" + s.hyperRef + ")"
				}
				if s.inTableCell {
					cellContent.WriteString(text)
				} else {
					currentPara.WriteString(text)
				}
				s.inText = false

			case "hyperlink":
				s.inHyper = false
				s.hyperRef = ""

			case "p":
				paraText := strings.TrimSpace(currentPara.String())
				currentPara.Reset()
				if s.inTableCell {
					cellContent.WriteString(paraText)
					break
				}
				if paraText == "" {
					break
				}
				blocks = append(blocks, docxBlock{
					text:    paraText,
					heading: docxHeadingLevel(s.styleID, styles),
					list:    s.inList,
				})

			case "tc":
				currentRow = append(currentRow, strings.TrimSpace(cellContent.String()))
				s.inTableCell = false

			case "tr":
				tableRows = append(tableRows, currentRow)

			case "tbl":
				if len(tableRows) > 0 {
					blocks = append(blocks, docxBlock{table: tableRows})
				}
			}
		}
	}

	return blocks, nil
}

// replaceDocxMath rewrites OMML equations inside document.xml as LaTeX text
// runs so the block walk picks them up as ordinary paragraph content. Block
// equations become their own $$-delimited paragraphs, inline equations
// become $-delimited runs.
func replaceDocxMath(docData []byte) []byte {
	content := string(docData)
	content = swapMathBlocks(content, "m:oMathPara", true)
	content = swapMathBlocks(content, "m:oMath", false)
	return []byte(content)
}

var mathRunEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// swapMathBlocks replaces each <tag>...</tag> region with a text run holding
// its LaTeX rendering. oMathPara has to go before oMath: the oMath open tag
// is a prefix of the oMathPara one.
func swapMathBlocks(content, tag string, display bool) string {
	openTag := "<" + tag
	closeTag := "</" + tag + ">"

	for {
		start := strings.Index(content, openTag)
		if start == -1 {
			break
		}
		rel := strings.Index(content[start:], closeTag)
		if rel == -1 {
			break
		}
		end := start + rel + len(closeTag)

		parts := docxmath.Latex(content[start:end])
		if len(parts) == 0 {
			break
		}
		latex := mathRunEscaper.Replace(strings.Join(parts, " "))

		var run string
		if display {
			run = "<w:p><w:r><w:t>$$" + latex + "$$</w:t></w:r></w:p>"
		} else {
			run = "<w:r><w:t>$" + latex + "$</w:t></w:r>"
		}
		content = content[:start] + run + content[end:]
	}
	return content
}

// parseDocxStyles maps style IDs to their display names from word/styles.xml.
func parseDocxStyles(zr *zip.Reader) map[string]string {
	styles := make(map[string]string)
	data, err := ooxml.ReadFileFromZip(zr, "word/styles.xml")
	if err != nil {
		return styles
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var currentStyleID string
	var inStyle bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "style" {
				inStyle = true
				for _, attr := range t.Attr {
					if attr.Name.Local == "styleId" {
						currentStyleID = attr.Value
					}
				}
			} else if inStyle && t.Name.Local == "name" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						styles[currentStyleID] = attr.Value
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" {
				inStyle = false
				currentStyleID = ""
			}
		}
	}
	return styles
}

// docxHeadingLevel returns the heading level (1-6) for a style, or 0 if not
// a heading. Style IDs like "Heading1" match directly; anything else goes
// through the style name from styles.xml.
func docxHeadingLevel(styleID string, styles map[string]string) int {
	if styleID == "" {
		return 0
	}

	lower := strings.ToLower(styleID)
	for i := 1; i <= 6; i++ {
		if lower == fmt.Sprintf("heading%d", i) || lower == fmt.Sprintf("heading %d", i) {
			return i
		}
	}

	if name, ok := styles[styleID]; ok {
		nameLower := strings.ToLower(name)
		for i := 1; i <= 6; i++ {
			if nameLower == fmt.Sprintf("heading %d", i) {
				return i
			}
		}
	}

	return 0
}

// docxToMarkdown renders the block list as Markdown.
func docxToMarkdown(blocks []docxBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch {
		case len(b.table) > 0:
			sb.WriteString(renderMarkdownTable(b.table))
			sb.WriteString("\n")
		case b.heading > 0:
			sb.WriteString(strings.Repeat("#", b.heading))
			sb.WriteString(" ")
			sb.WriteString(b.text)
			sb.WriteString("\n\n")
		case b.list:
			sb.WriteString("- ")
			sb.WriteString(b.text)
			sb.WriteString("\n")
		default:
			sb.WriteString(b.text)
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// extractDocxText flattens a Word document to plain text lines. Tables
// become tab-separated rows.
func extractDocxText(data []byte) (string, error) {
	blocks, err := extractDocxBlocks(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, b := range blocks {
		if len(b.table) > 0 {
			for _, row := range b.table {
				sb.WriteString(strings.Join(row, "\t"))
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(b.text)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
