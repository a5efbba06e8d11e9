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

// Package docxmath converts OMML, the equation markup embedded in Word
// documents, to LaTeX.
package docxmath

import (
	"encoding/xml"
	"strings"
)

const (
	namespaceMath   = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	namespaceWordML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// Element is a generically parsed OMML node.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Element  `xml:",any"`
	Content  string     `xml:",chardata"`
}

// Latex converts every oMath element inside one raw markup fragment to
// LaTeX. The fragment may be an oMath element, an oMathPara wrapper or any
// markup containing them. Unparseable fragments yield nil.
func Latex(fragment string) []string {
	wrapped := `<root xmlns:m="` + namespaceMath + `" xmlns:w="` + namespaceWordML + `">` + fragment + `</root>`
	var root Element
	if err := xml.Unmarshal([]byte(wrapped), &root); err != nil {
		return nil
	}

	var out []string
	collectMath(&root, &out)
	return out
}

func collectMath(e *Element, out *[]string) {
	if e.XMLName.Local == "oMath" {
		if latex := renderConcat(e); latex != "" {
			*out = append(*out, latex)
		}
		return
	}
	for i := range e.Children {
		collectMath(&e.Children[i], out)
	}
}

func (e *Element) child(name string) *Element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

func (e *Element) attrVal() string {
	for _, attr := range e.Attrs {
		if attr.Name.Local == "val" {
			return attr.Value
		}
	}
	return ""
}

// props carries the fields of a *Pr properties child. A missing properties
// element parses to the zero value.
type props struct {
	text   string
	chr    string
	pos    string
	begChr string
	endChr string
	kind   string
}

func parseProps(e *Element) props {
	var pr props
	if e == nil {
		return pr
	}

	var parts []string
	for i := range e.Children {
		child := &e.Children[i]
		switch child.XMLName.Local {
		case "brk":
			parts = append(parts, rowSep)
		case "chr":
			pr.chr = child.attrVal()
		case "pos":
			pr.pos = child.attrVal()
		case "begChr":
			pr.begChr = child.attrVal()
		case "endChr":
			pr.endChr = child.attrVal()
		case "type":
			pr.kind = child.attrVal()
		}
	}
	pr.text = strings.Join(parts, "")
	return pr
}

// lookup maps key through table, falling back to the key itself when the
// table has no entry and to fallback when the key is empty.
func lookup(key, fallback string, table map[string]string) string {
	if key == "" {
		return fallback
	}
	if v, ok := table[key]; ok {
		return v
	}
	return key
}

// fill substitutes {name} placeholders in a template.
func fill(template string, args map[string]string) string {
	out := template
	for k, v := range args {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

func fillOne(template, arg string) string {
	return strings.ReplaceAll(template, "{0}", arg)
}

// escapeLatex backslash-escapes LaTeX specials that are not escaped yet.
func escapeLatex(s string) string {
	s = strings.ReplaceAll(s, "\\\\", "\\")
	var b strings.Builder
	var last rune
	for _, c := range s {
		if latexSpecial[c] && last != '\\' {
			b.WriteRune('\\')
		}
		b.WriteRune(c)
		last = c
	}
	return b.String()
}

type tagText struct {
	tag  string
	text string
}

func renderList(e *Element) []tagText {
	var out []tagText
	for i := range e.Children {
		child := &e.Children[i]
		if text := render(child); text != "" {
			out = append(out, tagText{tag: child.XMLName.Local, text: text})
		}
	}
	return out
}

func renderMap(e *Element) map[string]string {
	out := make(map[string]string)
	for i := range e.Children {
		child := &e.Children[i]
		if text := render(child); text != "" {
			out[child.XMLName.Local] = text
		}
	}
	return out
}

// renderPayload renders every child except the named properties element.
func renderPayload(e *Element, prName string) map[string]string {
	out := make(map[string]string)
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == prName {
			continue
		}
		if text := render(child); text != "" {
			out[child.XMLName.Local] = text
		}
	}
	return out
}

func renderConcat(e *Element) string {
	var parts []string
	for i := range e.Children {
		if text := render(&e.Children[i]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "")
}

// containers are elements whose children render in place.
var containers = map[string]bool{
	"box": true, "sSub": true, "sSup": true, "sSubSup": true,
	"num": true, "den": true, "deg": true, "e": true,
}

func render(e *Element) string {
	switch e.XMLName.Local {
	case "r":
		return renderRun(e)
	case "acc":
		return renderAccent(e)
	case "bar":
		return renderBar(e)
	case "sub":
		return fillOne(subTemplate, renderConcat(e))
	case "sup":
		return fillOne(supTemplate, renderConcat(e))
	case "f":
		return renderFraction(e)
	case "func":
		return renderFuncApply(e)
	case "fName":
		return renderFuncName(e)
	case "groupChr":
		return renderGroupChr(e)
	case "d":
		return renderDelimiter(e)
	case "rad":
		return renderRadical(e)
	case "eqArr":
		return renderEqArray(e)
	case "limLow":
		return renderLimLow(e)
	case "limUpp":
		return renderLimUpp(e)
	case "lim":
		return strings.ReplaceAll(renderConcat(e), limArrow, limTo)
	case "m":
		return renderMatrix(e)
	case "mr":
		return renderMatrixRow(e)
	case "nary":
		return renderNary(e)
	}

	if containers[e.XMLName.Local] {
		return renderConcat(e)
	}
	if strings.HasSuffix(e.XMLName.Local, "Pr") {
		return parseProps(e).text
	}
	return ""
}

func renderRun(e *Element) string {
	t := e.child("t")
	if t == nil {
		return ""
	}

	var b strings.Builder
	for _, c := range t.Content {
		if rep, ok := charLatex[string(c)]; ok {
			b.WriteString(rep)
		} else {
			b.WriteRune(c)
		}
	}
	return escapeLatex(b.String())
}

func renderAccent(e *Element) string {
	pr := parseProps(e.child("accPr"))
	body := renderPayload(e, "accPr")
	return fillOne(lookup(pr.chr, defaultAccent, accentTemplates), body["e"])
}

func renderBar(e *Element) string {
	pr := parseProps(e.child("barPr"))
	body := renderPayload(e, "barPr")
	return pr.text + fillOne(lookup(pr.pos, defaultBar, barTemplates), body["e"])
}

func renderFraction(e *Element) string {
	pr := parseProps(e.child("fPr"))
	body := renderPayload(e, "fPr")
	return pr.text + fill(lookup(pr.kind, defaultFrac, fracTemplates), map[string]string{
		"num": body["num"],
		"den": body["den"],
	})
}

func renderFuncApply(e *Element) string {
	body := renderMap(e)
	return strings.ReplaceAll(body["fName"], funcSlot, body["e"])
}

func renderFuncName(e *Element) string {
	var parts []string
	for _, tt := range renderList(e) {
		if tt.tag == "r" {
			if f, ok := funcTemplates[tt.text]; ok {
				parts = append(parts, f)
				continue
			}
		}
		parts = append(parts, tt.text)
	}

	name := strings.Join(parts, "")
	if !strings.Contains(name, funcSlot) {
		name += funcSlot
	}
	return name
}

func renderGroupChr(e *Element) string {
	pr := parseProps(e.child("groupChrPr"))
	body := renderPayload(e, "groupChrPr")
	return pr.text + fillOne(lookup(pr.chr, "", accentTemplates), body["e"])
}

func renderDelimiter(e *Element) string {
	pr := parseProps(e.child("dPr"))
	body := renderPayload(e, "dPr")

	left := nullDelim
	if v := lookup(pr.begChr, defaultLeftDelim, charLatex); v != "" {
		left = escapeLatex(v)
	}
	right := nullDelim
	if v := lookup(pr.endChr, defaultRightDelim, charLatex); v != "" {
		right = escapeLatex(v)
	}

	return pr.text + fill(delimTemplate, map[string]string{
		"left":  left,
		"text":  body["e"],
		"right": right,
	})
}

func renderRadical(e *Element) string {
	body := renderMap(e)
	if deg := body["deg"]; deg != "" {
		return fill(radTemplate, map[string]string{"deg": deg, "text": body["e"]})
	}
	return fill(radDefaultTemplate, map[string]string{"text": body["e"]})
}

func renderEqArray(e *Element) string {
	var rows []string
	for _, tt := range renderList(e) {
		if tt.tag == "e" {
			rows = append(rows, tt.text)
		}
	}
	return fill(arrayTemplate, map[string]string{"text": strings.Join(rows, rowSep)})
}

func renderLimLow(e *Element) string {
	body := renderMap(e)
	template, ok := limFuncTemplates[body["e"]]
	if !ok {
		return body["e"] + "_{" + body["lim"] + "}"
	}
	return fill(template, map[string]string{"lim": body["lim"]})
}

func renderLimUpp(e *Element) string {
	body := renderMap(e)
	return fill(limUppTemplate, map[string]string{
		"lim":  body["lim"],
		"text": body["e"],
	})
}

func renderMatrix(e *Element) string {
	var rows []string
	for _, tt := range renderList(e) {
		if tt.tag == "mr" {
			rows = append(rows, tt.text)
		}
	}
	return fill(matrixTemplate, map[string]string{"text": strings.Join(rows, rowSep)})
}

func renderMatrixRow(e *Element) string {
	var cells []string
	for _, tt := range renderList(e) {
		if tt.tag == "e" {
			cells = append(cells, tt.text)
		}
	}
	return strings.Join(cells, alignSep)
}

func renderNary(e *Element) string {
	pr := parseProps(e.child("naryPr"))
	op := lookup(pr.chr, "", bigOperators)

	var rest []string
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == "naryPr" {
			continue
		}
		if text := render(child); text != "" {
			rest = append(rest, text)
		}
	}
	return op + strings.Join(rest, "")
}
