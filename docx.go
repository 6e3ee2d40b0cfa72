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

package docx2md

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nicholasgasior/docx2md/internal/omml"
	"github.com/nicholasgasior/docx2md/internal/ooxml"
)

const (
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relComments       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	relFootnotes      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	relEndnotes       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes"
	relCoreProperties = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
)

// transparent elements contribute their children and nothing else.
var transparent = map[string]bool{
	"sdt":              true,
	"sdtContent":       true,
	"customXml":        true,
	"smartTag":         true,
	"ins":              true,
	"moveTo":           true,
	"fldSimple":        true,
	"dir":              true,
	"bdo":              true,
	"AlternateContent": true,
	"Choice":           true,
}

// docxPackage is an opened DOCX container with its side parts decoded.
type docxPackage struct {
	pkg       *ooxml.Package
	main      string
	rels      map[string]ooxml.Relationship
	types     *ooxml.ContentTypes
	styles    styleSheet
	numbering numbering
	comments  map[string]comment
	footnotes map[string]string
	endnotes  map[string]string
	props     coreProperties
	warnings  []Warning
}

// openPackage sniffs data, opens the ZIP container and loads the optional side
// parts. The source name only disambiguates legacy .doc files from other OLE
// compound files.
func openPackage(data []byte, source string) (*docxPackage, error) {
	mt := mimetype.Detect(data)
	switch {
	case isA(mt, "application/msword"):
		return nil, notDocument(fmt.Errorf("legacy Word document (%s)", mt.String()))
	case isA(mt, "application/x-ole-storage"):
		if strings.EqualFold(path.Ext(source), ".doc") {
			return nil, notDocument(errors.New("legacy Word document"))
		}
		return nil, &ParseError{Kind: Unsupported, Offset: -1, Err: errors.New("OLE compound file; encrypted documents cannot be read")}
	case !isA(mt, "application/zip"):
		return nil, notDocument(fmt.Errorf("input is %s, not a ZIP package", mt.String()))
	}

	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, notDocument(err)
	}
	main, err := pkg.MainDocument()
	switch {
	case errors.Is(err, ooxml.ErrPartNotFound):
		return nil, notDocument(err)
	case err != nil:
		return nil, corrupt(ooxml.RelsPathFor(""), -1, err)
	case !pkg.Has(main):
		return nil, notDocument(fmt.Errorf("%q: %w", main, ooxml.ErrPartNotFound))
	}
	rels, err := pkg.Relationships(main)
	if err != nil {
		return nil, corrupt(ooxml.RelsPathFor(main), -1, err)
	}

	d := &docxPackage{
		pkg:       pkg,
		main:      main,
		rels:      rels,
		types:     pkg.ContentTypes(),
		styles:    styleSheet{},
		numbering: numbering{formats: map[string]map[int]string{}},
		comments:  map[string]comment{},
		footnotes: map[string]string{},
		endnotes:  map[string]string{},
	}
	d.loadOptional(d.sidePart(relStyles, "styles.xml"), func(b []byte) (err error) {
		d.styles, err = parseStyles(b)
		return err
	})
	d.loadOptional(d.sidePart(relNumbering, "numbering.xml"), func(b []byte) (err error) {
		d.numbering, err = parseNumbering(b)
		return err
	})
	d.loadOptional(d.sidePart(relComments, "comments.xml"), func(b []byte) (err error) {
		d.comments, err = parseComments(b)
		return err
	})
	d.loadOptional(d.sidePart(relFootnotes, "footnotes.xml"), func(b []byte) (err error) {
		d.footnotes, err = parseNotes(b, "footnote")
		return err
	})
	d.loadOptional(d.sidePart(relEndnotes, "endnotes.xml"), func(b []byte) (err error) {
		d.endnotes, err = parseNotes(b, "endnote")
		return err
	})
	d.loadOptional(d.corePart(), func(b []byte) (err error) {
		d.props, err = parseCoreProperties(b)
		return err
	})
	return d, nil
}

func isA(mt *mimetype.MIME, want string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true
		}
	}
	return false
}

// sidePart finds the part related to the main document by relType, falling
// back to the conventional name next to the main document.
func (d *docxPackage) sidePart(relType, fallback string) string {
	ids := make([]string, 0, len(d.rels))
	for id, rel := range d.rels {
		if rel.Type == relType && !rel.External() {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		sort.Strings(ids)
		return ooxml.ResolveTarget(d.main, d.rels[ids[0]].Target)
	}
	return ooxml.ResolveTarget(d.main, fallback)
}

func (d *docxPackage) corePart() string {
	rels, err := d.pkg.Relationships("")
	if err == nil {
		for _, rel := range rels {
			if rel.Type == relCoreProperties && !rel.External() {
				return ooxml.ResolveTarget("", rel.Target)
			}
		}
	}
	return "docProps/core.xml"
}

// loadOptional decodes part if it exists. Failures become part_ignored
// warnings.
func (d *docxPackage) loadOptional(part string, parse func([]byte) error) {
	if !d.pkg.Has(part) {
		return
	}
	data, err := d.pkg.ReadPart(part)
	if err == nil {
		err = parse(data)
	}
	if err != nil {
		d.warn(WarningPartIgnored, part, fmt.Sprintf("part could not be read: %v", err))
	}
}

func (d *docxPackage) warn(kind WarningKind, part, msg string) {
	d.warnings = append(d.warnings, Warning{Kind: kind, Part: part, Message: msg})
}

// parser is a recursive descent parser over the token stream of the main
// document part. Each method consumes exactly the element whose start token it
// is handed.
type parser struct {
	ctx    context.Context
	pkg    *docxPackage
	d      *xml.Decoder
	doc    *documentNode
	images int
}

// paraState is the inline content collected for one paragraph.
type paraState struct {
	href     string
	inline   []node
	comments []string
	// pending holds blocks found inside the paragraph, emitted after it.
	pending []node
}

type cellProps struct {
	GridSpan *valAttr `xml:"gridSpan"`
}

func (c cellProps) span() int {
	if c.GridSpan == nil {
		return 1
	}
	n, err := strconv.Atoi(c.GridSpan.Val)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

type runProps struct {
	RStyle  *valAttr `xml:"rStyle"`
	B       *valAttr `xml:"b"`
	I       *valAttr `xml:"i"`
	Strike  *valAttr `xml:"strike"`
	Dstrike *valAttr `xml:"dstrike"`
	RFonts  *struct {
		ASCII string `xml:"ascii,attr"`
		HAnsi string `xml:"hAnsi,attr"`
	} `xml:"rFonts"`
}

var monospaceFonts = map[string]bool{
	"courier":         true,
	"courier new":     true,
	"consolas":        true,
	"menlo":           true,
	"monaco":          true,
	"lucida console":  true,
	"source code pro": true,
	"fira code":       true,
	"cascadia code":   true,
}

func (rp runProps) style(styles styleSheet) style {
	var s style
	if onOff(rp.B) {
		s |= styleBold
	}
	if onOff(rp.I) {
		s |= styleItalic
	}
	if onOff(rp.Strike) || onOff(rp.Dstrike) {
		s |= styleStrike
	}
	if rp.RStyle != nil {
		id := rp.RStyle.Val
		if styles.isCode(id) {
			s |= styleCode
		}
		name := strings.ToLower(styles[id].name)
		switch {
		case id == "Strong" || name == "strong":
			s |= styleBold
		case id == "Emphasis" || name == "emphasis":
			s |= styleItalic
		}
	}
	if rp.RFonts != nil && (monospaceFonts[strings.ToLower(rp.RFonts.ASCII)] || monospaceFonts[strings.ToLower(rp.RFonts.HAnsi)]) {
		s |= styleCode
	}
	return s
}

// parseDocument decodes the main document part into a tree.
func parseDocument(ctx context.Context, pkg *docxPackage) (*documentNode, error) {
	data, err := pkg.pkg.ReadPart(pkg.main)
	if err != nil {
		return nil, corrupt(pkg.main, -1, err)
	}
	p := &parser{
		ctx: ctx,
		pkg: pkg,
		d:   xml.NewDecoder(bytes.NewReader(data)),
		doc: &documentNode{},
	}

	sawRoot := false
	for {
		tok, err := p.d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.fail(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if start.Name.Local != "document" {
				return nil, p.fail(fmt.Errorf("unexpected root element <%s>", start.Name.Local))
			}
			sawRoot = true
			continue
		}
		if start.Name.Local != "body" {
			if err := p.skip(); err != nil {
				return nil, err
			}
			continue
		}
		children, err := p.blocks(start, nil)
		if err != nil {
			return nil, err
		}
		p.doc.children = children
		break
	}
	if !sawRoot {
		return nil, p.fail(errors.New("missing document element"))
	}

	for _, n := range p.doc.notes {
		text := "[" + n.label + "]"
		if n.text != "" {
			text += " " + n.text
		}
		p.doc.children = append(p.doc.children, &paragraphNode{children: []node{&runNode{text: text}}})
	}
	return p.doc, nil
}

func (p *parser) fail(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return corrupt(p.pkg.main, p.d.InputOffset(), err)
}

func (p *parser) next() (xml.Token, error) {
	tok, err := p.d.Token()
	if err != nil {
		return nil, p.fail(err)
	}
	return tok, nil
}

func (p *parser) skip() error {
	if err := p.d.Skip(); err != nil {
		return p.fail(err)
	}
	return nil
}

func (p *parser) decode(v any, start xml.StartElement) error {
	if err := p.d.DecodeElement(v, &start); err != nil {
		return p.fail(err)
	}
	return nil
}

// blocks parses block-level content until the end of start. Table cells pass
// props to receive their w:tcPr.
func (p *parser) blocks(start xml.StartElement, props *cellProps) ([]node, error) {
	var out []node
	depth := 0
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			switch {
			case local == "p":
				if err := p.ctx.Err(); err != nil {
					return nil, err
				}
				nodes, err := p.paragraph(t)
				if err != nil {
					return nil, err
				}
				out = appendBlocks(out, nodes...)
			case local == "tbl":
				tbl, err := p.table(t)
				if err != nil {
					return nil, err
				}
				if tbl != nil {
					out = append(out, tbl)
				}
			case local == "altChunk":
				id := ooxml.RelAttr(t, "id")
				if err := p.skip(); err != nil {
					return nil, err
				}
				out = appendBlocks(out, p.pkg.altChunk(id)...)
			case local == "tcPr" && props != nil:
				if err := p.decode(props, t); err != nil {
					return nil, err
				}
			case transparent[local]:
				depth++
			default:
				if err := p.skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if depth == 0 {
				return out, nil
			}
			depth--
		}
	}
}

// appendBlocks appends blocks to out, merging consecutive code paragraphs into
// one code block.
func appendBlocks(out []node, blocks ...node) []node {
	for _, b := range blocks {
		if code, ok := b.(*codeBlockNode); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*codeBlockNode); ok {
				prev.lines = append(prev.lines, code.lines...)
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func (p *parser) paragraph(start xml.StartElement) ([]node, error) {
	var (
		props paragraphProps
		ps    = &paraState{}
		math  []node
		depth int
	)
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch local := t.Name.Local; {
			case local == "pPr":
				if err := p.decode(&props, t); err != nil {
					return nil, err
				}
			case local == "r":
				if err := p.run(t, ps); err != nil {
					return nil, err
				}
			case local == "hyperlink":
				ps.href = p.hyperlinkTarget(t)
				depth++
			case local == "oMath":
				latex, err := p.math(t)
				if err != nil {
					return nil, err
				}
				if latex != "" {
					ps.inline = append(ps.inline, &runNode{text: latex, style: styleMath})
				}
			case local == "oMathPara":
				latex, err := p.math(t)
				if err != nil {
					return nil, err
				}
				if latex != "" {
					math = append(math, &mathBlockNode{latex: latex})
				}
			case transparent[local]:
				depth++
			default:
				if err := p.skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if depth == 0 {
				return p.finishParagraph(props, ps, math), nil
			}
			if t.Name.Local == "hyperlink" {
				ps.href = ""
			}
			depth--
		}
	}
}

func (p *parser) finishParagraph(props paragraphProps, ps *paraState, math []node) []node {
	inline := ps.inline
	for _, id := range ps.comments {
		if c, ok := p.pkg.comments[id]; ok {
			inline = append(inline, &runNode{text: fmt.Sprintf(" [comment by %s: %s]", c.author, c.text)})
		}
	}

	styleID := ""
	if props.PStyle != nil {
		styleID = props.PStyle.Val
	}
	var blocks []node
	switch {
	case p.pkg.styles.isCode(styleID) && !hasImage(inline):
		text := plainText(&paragraphNode{children: inline})
		blocks = append(blocks, &codeBlockNode{lines: strings.Split(text, "\n")})
	case !isBlank(inline):
		blocks = append(blocks, p.classify(props, styleID, inline))
	}
	blocks = append(blocks, math...)
	return append(blocks, ps.pending...)
}

func (p *parser) classify(props paragraphProps, styleID string, inline []node) node {
	level := 0
	if props.OutlineLvl != nil {
		if lvl, err := strconv.Atoi(props.OutlineLvl.Val); err == nil && lvl >= 0 && lvl < 9 {
			level = clampHeading(lvl + 1)
		}
	}
	if level == 0 {
		level = p.pkg.styles.headingLevel(styleID)
	}
	if level > 0 {
		return &headingNode{level: level, children: inline}
	}
	if depth, ordered, ok := p.listInfo(props, styleID); ok {
		return &listItemNode{depth: depth, ordered: ordered, children: inline}
	}
	return &paragraphNode{children: inline}
}

// listInfo resolves direct numbering first and style numbering second. A numId
// of 0 removes numbering.
func (p *parser) listInfo(props paragraphProps, styleID string) (depth int, ordered, ok bool) {
	numID, ilvl, ordered, ok := p.pkg.styles.listStyle(styleID)
	if np := props.NumPr; np != nil {
		if np.NumID != nil {
			numID, ok = np.NumID.Val, true
		}
		if np.Ilvl != nil {
			ilvl, _ = strconv.Atoi(np.Ilvl.Val)
		}
	}
	if !ok || numID == "0" {
		return 0, false, false
	}
	if numID != "" {
		ordered = p.pkg.numbering.ordered(numID, ilvl)
	}
	return min(max(ilvl, 0), 8), ordered, true
}

func isBlank(inline []node) bool {
	for _, n := range inline {
		switch n := n.(type) {
		case *runNode:
			if strings.TrimSpace(n.text) != "" {
				return false
			}
		case *breakNode:
		default:
			return false
		}
	}
	return true
}

func hasImage(inline []node) bool {
	for _, n := range inline {
		if _, ok := n.(*imageNode); ok {
			return true
		}
	}
	return false
}

func (p *parser) hyperlinkTarget(start xml.StartElement) string {
	anchor := ooxml.Attr(start, "anchor")
	if id := ooxml.RelAttr(start, "id"); id != "" {
		if rel, ok := p.pkg.rels[id]; ok {
			if anchor != "" {
				return rel.Target + "#" + anchor
			}
			return rel.Target
		}
	}
	if anchor != "" {
		return "#" + anchor
	}
	return ""
}

func (p *parser) math(start xml.StartElement) (string, error) {
	el, err := omml.Decode(p.d, start)
	if err != nil {
		return "", p.fail(err)
	}
	return omml.ToLaTeX(el), nil
}

func (p *parser) run(start xml.StartElement, ps *paraState) error {
	var (
		st    style
		text  strings.Builder
		depth int
	)
	flush := func() {
		if text.Len() > 0 {
			ps.inline = append(ps.inline, &runNode{text: text.String(), style: st, href: ps.href})
			text.Reset()
		}
	}
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var err error
			switch local := t.Name.Local; local {
			case "rPr":
				var rp runProps
				if err = p.decode(&rp, t); err == nil {
					st = rp.style(p.pkg.styles)
				}
			case "t":
				var s string
				if err = p.decode(&s, t); err == nil {
					text.WriteString(s)
				}
			case "tab":
				text.WriteByte('\t')
				err = p.skip()
			case "br", "cr":
				switch ooxml.Attr(t, "type") {
				case "page", "column":
				default:
					flush()
					ps.inline = append(ps.inline, &breakNode{})
				}
				err = p.skip()
			case "noBreakHyphen":
				text.WriteByte('-')
				err = p.skip()
			case "sym":
				if r, ok := symbolRune(ooxml.Attr(t, "char")); ok {
					text.WriteRune(r)
				}
				err = p.skip()
			case "drawing", "pict":
				flush()
				var nodes []node
				if nodes, err = p.drawing(t); err == nil {
					ps.inline = append(ps.inline, nodes...)
				}
			case "object":
				flush()
				err = p.object(t, ps)
			case "footnoteReference", "endnoteReference":
				text.WriteString(p.noteRef(local, ooxml.Attr(t, "id")))
				err = p.skip()
			case "commentReference":
				ps.comments = append(ps.comments, ooxml.Attr(t, "id"))
				err = p.skip()
			case "AlternateContent", "Choice":
				depth++
			default:
				// instrText, delText, fldChar, Fallback and layout markers.
				err = p.skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			if depth == 0 {
				flush()
				return nil
			}
			depth--
		}
	}
}

// symbolRune decodes the hexadecimal w:char of a w:sym. Symbol fonts use the
// F000 private-use block as an alias for their 8-bit code points.
func symbolRune(char string) (rune, bool) {
	v, err := strconv.ParseUint(char, 16, 32)
	if err != nil {
		return 0, false
	}
	r := rune(v)
	if r >= 0xF000 && r <= 0xF0FF {
		r -= 0xF000
	}
	if r < 0x20 || !unicode.IsPrint(r) {
		return 0, false
	}
	return r, true
}

func (p *parser) noteRef(kind, id string) string {
	notes := p.pkg.footnotes
	if kind == "endnoteReference" {
		notes = p.pkg.endnotes
	}
	label := strconv.Itoa(len(p.doc.notes) + 1)
	p.doc.notes = append(p.doc.notes, noteBody{label: label, text: notes[id]})
	return "[" + label + "]"
}

// drawing consumes a w:drawing or w:pict and returns its images, plus the
// flattened text of any text box it contains.
func (p *parser) drawing(start xml.StartElement) ([]node, error) {
	var (
		nodes     []node
		alt       string
		fromDescr bool
		depth     int
	)
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "docPr", "cNvPr":
				// The description wins over the title, whichever element carries it.
				if descr := ooxml.Attr(t, "descr"); descr != "" {
					alt, fromDescr = descr, true
				} else if title := ooxml.Attr(t, "title"); title != "" && !fromDescr {
					alt = title
				}
				depth++
			case "blip":
				nodes = append(nodes, p.image(ooxml.RelAttr(t, "embed"), ooxml.RelAttr(t, "link"), alt))
				depth++
			case "imagedata":
				nodes = append(nodes, p.image(ooxml.RelAttr(t, "id"), "", ooxml.Attr(t, "title")))
				depth++
			case "txbxContent":
				blocks, err := p.blocks(t, nil)
				if err != nil {
					return nil, err
				}
				if flat := flattenBlocks(blocks); len(flat) > 0 {
					nodes = append(nodes, &runNode{text: " "})
					nodes = append(nodes, flat...)
					nodes = append(nodes, &runNode{text: " "})
				}
			case "Fallback":
				if err := p.skip(); err != nil {
					return nil, err
				}
			default:
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				return nodes, nil
			}
			depth--
		}
	}
}

// image registers one image occurrence.
func (p *parser) image(embed, link, alt string) *imageNode {
	p.images++
	src := imageSource{id: "image-" + strconv.Itoa(p.images), ref: embed}
	switch {
	case embed != "":
		if rel, ok := p.pkg.rels[embed]; ok {
			if rel.External() {
				src.external = rel.Target
			} else {
				src.part = ooxml.ResolveTarget(p.pkg.main, rel.Target)
			}
		}
	case link != "":
		src.ref = link
		src.external = link
		if rel, ok := p.pkg.rels[link]; ok {
			src.external = rel.Target
		}
	}
	p.doc.images = append(p.doc.images, src)
	return &imageNode{assetID: src.id, alt: alt}
}

// object consumes a w:object. Embedded workbooks become tables emitted after
// the paragraph; anything else is skipped with a warning.
func (p *parser) object(start xml.StartElement, ps *paraState) error {
	var (
		rid, progID string
		depth       int
	)
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "OLEObject", "control":
				if id := ooxml.RelAttr(t, "id"); id != "" {
					rid = id
				}
				if prog := ooxml.Attr(t, "ProgID"); prog != "" {
					progID = prog
				}
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				ps.pending = append(ps.pending, p.pkg.embeddedObject(rid, progID)...)
				return nil
			}
			depth--
		}
	}
}

func (p *parser) table(start xml.StartElement) (*tableNode, error) {
	tbl := &tableNode{}
	row, col, depth := -1, 0, 0
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch local := t.Name.Local; {
			case local == "tr":
				row++
				col = 0
				depth++
			case local == "tc":
				row = max(row, 0)
				var props cellProps
				children, err := p.blocks(t, &props)
				if err != nil {
					return nil, err
				}
				tbl.cells = append(tbl.cells, &tableCellNode{row: row, col: col, children: children})
				col++
				for i := 1; i < props.span(); i++ {
					tbl.cells = append(tbl.cells, &tableCellNode{row: row, col: col})
					col++
				}
				tbl.cols = max(tbl.cols, col)
			case transparent[local]:
				depth++
			default:
				if err := p.skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if depth == 0 {
				tbl.rows = row + 1
				if tbl.rows == 0 || tbl.cols == 0 {
					return nil, nil
				}
				return tbl, nil
			}
			depth--
		}
	}
}

// flattenBlocks lowers blocks to inline content separated by spaces. Images
// are kept so every registered occurrence stays referenced.
func flattenBlocks(blocks []node) []node {
	var out []node
	for _, b := range blocks {
		var inline []node
		switch b := b.(type) {
		case *tableNode:
			for _, c := range b.cells {
				if cell := flattenBlocks(c.children); len(cell) > 0 {
					if len(inline) > 0 {
						inline = append(inline, &runNode{text: " "})
					}
					inline = append(inline, cell...)
				}
			}
		case *codeBlockNode:
			inline = []node{&runNode{text: strings.Join(b.lines, " "), style: styleCode}}
		case *mathBlockNode:
			inline = []node{&runNode{text: b.latex, style: styleMath}}
		case *fragmentNode:
			inline = []node{&runNode{text: strings.Join(strings.Fields(b.markdown), " ")}}
		default:
			inline = childrenOf(b)
		}
		if len(inline) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, &runNode{text: " "})
		}
		out = append(out, inline...)
	}
	return out
}
