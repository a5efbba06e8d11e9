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
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/drag9988/Render-Backend-sub001/internal/ooxml"
)

// pptxSlide is one slide's extracted content in reading order.
type pptxSlide struct {
	shapes []pptxShape
	notes  string
}

type pptxShape struct {
	top     int64
	left    int64
	text    string
	isTitle bool
	isTable bool
	table   [][]string
	isPic   bool
	altText string
}

// extractPptxSlides reads every slide of a presentation in presentation
// order, with shapes sorted top to bottom, left to right.
func extractPptxSlides(data []byte) ([]pptxSlide, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PPTX container: %w", err)
	}

	slideOrder, err := getSlideOrder(zr)
	if err != nil {
		return nil, fmt.Errorf("resolve slide order: %w", err)
	}

	var slides []pptxSlide
	for _, slidePath := range slideOrder {
		slideData, err := ooxml.ReadFileFromZip(zr, slidePath)
		if err != nil {
			continue
		}

		shapes := extractShapes(slideData)
		sort.SliceStable(shapes, func(i, j int) bool {
			if shapes[i].top != shapes[j].top {
				return shapes[i].top < shapes[j].top
			}
			return shapes[i].left < shapes[j].left
		})

		slide := pptxSlide{shapes: shapes}
		if notesPath := getNotesPath(slidePath, zr); notesPath != "" {
			if notesData, err := ooxml.ReadFileFromZip(zr, notesPath); err == nil {
				slide.notes = extractNotesText(notesData)
			}
		}
		slides = append(slides, slide)
	}
	return slides, nil
}

// extractPptxMarkdown renders a presentation as Markdown with slide markers
// and speaker notes.
func extractPptxMarkdown(data []byte) (string, error) {
	slides, err := extractPptxSlides(data)
	if err != nil {
		return "", err
	}

	var md strings.Builder
	for i, slide := range slides {
		md.WriteString(fmt.Sprintf("\n\n<!-- Slide number: %d -->\n", i+1))
		for _, shape := range slide.shapes {
			switch {
			case shape.isPic && shape.altText != "":
				md.WriteString(fmt.Sprintf("\n![%s](image)\n", sanitizeAltText(shape.altText)))
			case shape.isTable && len(shape.table) > 0:
				md.WriteString(renderMarkdownTable(shape.table))
			case shape.isTitle:
				if text := strings.TrimSpace(shape.text); text != "" {
					md.WriteString("# " + text + "\n")
				}
			case shape.text != "":
				md.WriteString(shape.text + "\n")
			}
		}
		if strings.TrimSpace(slide.notes) != "" {
			md.WriteString("\n\n### Notes:\n")
			md.WriteString(slide.notes)
		}
	}
	return strings.TrimSpace(md.String()), nil
}

// extractPptxText flattens a presentation to plain text, one block per
// slide. Notes are dropped.
func extractPptxText(data []byte) (string, error) {
	slides, err := extractPptxSlides(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, slide := range slides {
		for _, shape := range slide.shapes {
			if shape.isTable {
				for _, row := range shape.table {
					sb.WriteString(strings.Join(row, "\t"))
					sb.WriteString("\n")
				}
				continue
			}
			if text := strings.TrimSpace(shape.text); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// getSlideOrder returns slide file paths in presentation order.
func getSlideOrder(zr *zip.Reader) ([]string, error) {
	presData, err := ooxml.ReadFileFromZip(zr, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}

	rels, _ := ooxml.ParseRelationshipsFromReader(zr, "ppt/_rels/presentation.xml.rels")

	decoder := xml.NewDecoder(bytes.NewReader(presData))
	var slideRIDs []string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local == "sldId" {
				for _, attr := range se.Attr {
					if attr.Name.Local == "id" && strings.Contains(attr.Name.Space, "relationships") {
						slideRIDs = append(slideRIDs, attr.Value)
					}
				}
			}
		}
	}

	var slidePaths []string
	for _, rid := range slideRIDs {
		if rel, ok := rels[rid]; ok {
			slidePaths = append(slidePaths, ooxml.ResolveTarget("ppt/presentation.xml", rel.Target))
		}
	}

	if len(slidePaths) == 0 {
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
				slidePaths = append(slidePaths, f.Name)
			}
		}
		sort.Strings(slidePaths)
	}

	return slidePaths, nil
}

// sanitizeAltText cleans alt text for markdown image syntax.
func sanitizeAltText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "[", " ")
	s = strings.ReplaceAll(s, "]", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// extractShapes extracts all shapes from slide XML using a recursive approach.
func extractShapes(slideData []byte) []pptxShape {
	var root xmlNode
	if err := xml.Unmarshal(slideData, &root); err != nil {
		return nil
	}

	var shapes []pptxShape
	walkShapeTree(&root, &shapes)
	return shapes
}

// xmlNode is a generic XML tree node.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Content  string     `xml:",chardata"`
}

func (n *xmlNode) getAttr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) findChild(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) findAll(local string) []*xmlNode {
	var result []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			result = append(result, &n.Children[i])
		}
	}
	return result
}

// findDeep finds first descendant with given local name.
func (n *xmlNode) findDeep(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
		found := n.Children[i].findDeep(local)
		if found != nil {
			return found
		}
	}
	return nil
}

// findAllDeep finds all descendants with given local name.
func (n *xmlNode) findAllDeep(local string) []*xmlNode {
	var result []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			result = append(result, &n.Children[i])
		}
		result = append(result, n.Children[i].findAllDeep(local)...)
	}
	return result
}

// allText extracts all text content recursively.
func (n *xmlNode) allText() string {
	if n.Content != "" {
		return n.Content
	}
	var parts []string
	for i := range n.Children {
		t := n.Children[i].allText()
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "")
}

// walkShapeTree walks the XML tree and collects shapes.
func walkShapeTree(node *xmlNode, shapes *[]pptxShape) {
	switch node.XMLName.Local {
	case "sp":
		if shape := extractSP(node); shape != nil {
			*shapes = append(*shapes, *shape)
		}
	case "pic":
		if shape := extractPic(node); shape != nil {
			*shapes = append(*shapes, *shape)
		}
	case "graphicFrame":
		if shape := extractGraphicFrame(node); shape != nil {
			*shapes = append(*shapes, *shape)
		}
	default:
		for i := range node.Children {
			walkShapeTree(&node.Children[i], shapes)
		}
	}
}

// extractSP extracts a shape element.
func extractSP(node *xmlNode) *pptxShape {
	shape := &pptxShape{
		top:  math.MaxInt64,
		left: math.MaxInt64,
	}

	// Check for title placeholder
	if nvSpPr := node.findChild("nvSpPr"); nvSpPr != nil {
		if nvPr := nvSpPr.findChild("nvPr"); nvPr != nil {
			if ph := nvPr.findChild("ph"); ph != nil {
				phType := ph.getAttr("type")
				if phType == "title" || phType == "ctrTitle" {
					shape.isTitle = true
				}
			}
		}
	}

	extractPosition(node, shape)

	if txBody := node.findChild("txBody"); txBody != nil {
		shape.text = extractTextFromTxBody(txBody)
	}

	if strings.TrimSpace(shape.text) == "" {
		return nil
	}
	return shape
}

// extractPic extracts a picture element.
func extractPic(node *xmlNode) *pptxShape {
	shape := &pptxShape{
		top:   math.MaxInt64,
		left:  math.MaxInt64,
		isPic: true,
	}

	if nvPicPr := node.findChild("nvPicPr"); nvPicPr != nil {
		if cNvPr := nvPicPr.findChild("cNvPr"); cNvPr != nil {
			shape.altText = cNvPr.getAttr("descr")
		}
	}

	extractPosition(node, shape)

	if shape.altText == "" {
		return nil
	}
	return shape
}

// extractGraphicFrame extracts a graphic frame (tables, charts).
func extractGraphicFrame(node *xmlNode) *pptxShape {
	shape := &pptxShape{
		top:  math.MaxInt64,
		left: math.MaxInt64,
	}

	extractPosition(node, shape)

	if tbl := node.findDeep("tbl"); tbl != nil {
		shape.isTable = true
		shape.table = extractShapeTable(tbl)
		if len(shape.table) > 0 {
			return shape
		}
	}
	return nil
}

// extractPosition extracts position from spPr/xfrm/off.
func extractPosition(node *xmlNode, shape *pptxShape) {
	spPr := node.findChild("spPr")
	if spPr == nil {
		return
	}
	xfrm := spPr.findChild("xfrm")
	if xfrm == nil {
		return
	}
	off := xfrm.findChild("off")
	if off == nil {
		return
	}
	if x := off.getAttr("x"); x != "" {
		var v int64
		fmt.Sscanf(x, "%d", &v)
		shape.left = v
	}
	if y := off.getAttr("y"); y != "" {
		var v int64
		fmt.Sscanf(y, "%d", &v)
		shape.top = v
	}
}

// extractTextFromTxBody extracts text from a txBody element.
func extractTextFromTxBody(txBody *xmlNode) string {
	var parts []string
	for _, p := range txBody.findAll("p") {
		var lineText []string
		for _, r := range p.findAllDeep("t") {
			if t := r.allText(); t != "" {
				lineText = append(lineText, t)
			}
		}
		if len(lineText) > 0 {
			parts = append(parts, strings.Join(lineText, ""))
		}
	}
	return strings.Join(parts, "\n")
}

// extractShapeTable extracts a table from a tbl element.
func extractShapeTable(tbl *xmlNode) [][]string {
	var rows [][]string
	for _, tr := range tbl.findAll("tr") {
		var row []string
		for _, tc := range tr.findAll("tc") {
			if txBody := tc.findChild("txBody"); txBody != nil {
				row = append(row, strings.TrimSpace(extractTextFromTxBody(txBody)))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// getNotesPath returns the notes slide path for a given slide.
func getNotesPath(slidePath string, zr *zip.Reader) string {
	relsPath := ooxml.RelsPathFor(slidePath)
	rels, err := ooxml.ParseRelationshipsFromReader(zr, relsPath)
	if err != nil {
		return ""
	}

	for _, rel := range rels {
		if strings.Contains(rel.Type, "notesSlide") {
			return ooxml.ResolveTarget(slidePath, rel.Target)
		}
	}
	return ""
}

// extractNotesText extracts text content from a notes slide.
func extractNotesText(data []byte) string {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return ""
	}

	var parts []string
	for _, txBody := range root.findAllDeep("txBody") {
		text := strings.TrimSpace(extractTextFromTxBody(txBody))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
