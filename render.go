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
	"encoding/base64"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	imagePlaceholder = "[image omitted]"
	listIndent       = "    "
)

// inlineContext selects how line breaks and pipes render.
type inlineContext int

const (
	inBlock inlineContext = iota
	inHeading
	inCell
)

type renderer struct {
	mode   ImageMode
	assets map[string]*ImageAsset
	used   []string
	// listDepth is the depth of the previous list item, or -1 outside lists.
	listDepth int
}

// render walks doc and returns the Markdown text together with the names of
// the assets it references, in order of appearance.
func render(doc *documentNode, mode ImageMode, assets []ImageAsset) (string, []string) {
	r := &renderer{mode: mode, assets: make(map[string]*ImageAsset, len(assets)), listDepth: -1}
	for i := range assets {
		r.assets[assets[i].id] = &assets[i]
	}

	var b strings.Builder
	prevList := false
	for _, child := range doc.children {
		_, isList := child.(*listItemNode)
		if !isList {
			r.listDepth = -1
		}
		s := r.block(child)
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			if isList && prevList {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(s)
		prevList = isList
	}
	if b.Len() == 0 {
		return "", r.used
	}
	b.WriteString("\n")
	return b.String(), r.used
}

func (r *renderer) block(n node) string {
	switch n := n.(type) {
	case *headingNode:
		text := r.inline(n.children, inHeading)
		if text == "" {
			return ""
		}
		if strings.HasSuffix(text, "#") {
			text = text[:len(text)-1] + `\#`
		}
		return strings.Repeat("#", min(max(n.level, 1), 6)) + " " + text
	case *paragraphNode:
		return escapeLineStart(r.inline(n.children, inBlock))
	case *listItemNode:
		return r.listItem(n)
	case *tableNode:
		return r.table(n)
	case *codeBlockNode:
		return codeBlock(n.lines)
	case *mathBlockNode:
		return "$$" + strings.TrimSpace(n.latex) + "$$"
	case *fragmentNode:
		return strings.TrimSpace(n.markdown)
	case *runNode, *imageNode, *breakNode:
		return escapeLineStart(r.inline([]node{n}, inBlock))
	}
	return escapeLineStart(escapeText(strings.TrimSpace(plainText(n))))
}

func (r *renderer) listItem(n *listItemNode) string {
	text := escapeLineStart(r.inline(n.children, inBlock))
	if text == "" {
		return ""
	}
	// A nested item cannot be deeper than one level below its predecessor,
	// and a list never starts indented.
	depth := min(n.depth, r.listDepth+1)
	r.listDepth = depth

	marker := "- "
	if n.ordered {
		marker = "1. "
	}
	indent := strings.Repeat(listIndent, depth)
	cont := "\n" + indent + strings.Repeat(" ", len(marker))
	return indent + marker + strings.ReplaceAll(text, "\n", cont)
}

func (r *renderer) table(t *tableNode) string {
	if t.rows == 0 || t.cols == 0 {
		return ""
	}
	grid := make([][]string, t.rows)
	for i := range grid {
		grid[i] = make([]string, t.cols)
	}
	for _, c := range t.cells {
		if c.row < t.rows && c.col < t.cols {
			grid[c.row][c.col] = r.cell(c)
		}
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |")
		if i == 0 {
			b.WriteString("\n|" + strings.Repeat(" --- |", t.cols))
		}
	}
	return b.String()
}

// cell renders the blocks of a table cell on one line, joined by <br>.
func (r *renderer) cell(c *tableCellNode) string {
	var parts []string
	for _, child := range c.children {
		if s := r.inline(flattenBlocks([]node{child}), inCell); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "<br>")
}

func codeBlock(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	body := strings.Join(lines, "\n")
	fence := strings.Repeat("`", max(3, longestRun(body, '`')+1))
	return fence + "\n" + body + "\n" + fence
}

// inline renders inline content. Adjacent runs with the same style and link
// are merged before delimiters are applied.
func (r *renderer) inline(nodes []node, ctx inlineContext) string {
	nodes = trimBreaks(nodes)
	var b strings.Builder
	for i := 0; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *runNode:
			text := n.text
			for i+1 < len(nodes) && !n.style.has(styleMath) {
				next, ok := nodes[i+1].(*runNode)
				if !ok || next.style != n.style || next.href != n.href {
					break
				}
				text += next.text
				i++
			}
			prev, _ := utf8.DecodeLastRuneInString(b.String())
			b.WriteString(r.run(text, n.style, n.href, ctx, prev, firstRune(nodes[i+1:])))
		case *breakNode:
			switch ctx {
			case inCell:
				b.WriteString("<br>")
			case inHeading:
				b.WriteString(" ")
			default:
				b.WriteString("\\\n")
			}
		case *imageNode:
			b.WriteString(r.image(n))
		default:
			b.WriteString(escapeText(plainText(n)))
		}
	}
	return strings.TrimSpace(b.String())
}

func trimBreaks(nodes []node) []node {
	for len(nodes) > 0 {
		if _, ok := nodes[0].(*breakNode); !ok {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 {
		if _, ok := nodes[len(nodes)-1].(*breakNode); !ok {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// firstRune approximates the first character the renderer emits for nodes.
// Anything other than a plain run starts with punctuation.
func firstRune(nodes []node) rune {
	if len(nodes) == 0 {
		return 0
	}
	n, ok := nodes[0].(*runNode)
	if !ok || n.style != 0 || n.href != "" {
		return '*'
	}
	c, _ := utf8.DecodeRuneInString(n.text)
	return c
}

// run renders one merged run. before and after are the characters around it
// in the output; they decide whether emphasis delimiters would be recognized.
func (r *renderer) run(text string, st style, href string, ctx inlineContext, before, after rune) string {
	if st.has(styleMath) {
		return "$" + strings.TrimSpace(text) + "$"
	}
	lead, core, trail := splitSpace(text)
	if core == "" {
		return strings.ReplaceAll(text, "\n", " ")
	}

	if st.has(styleCode) {
		core = codeSpan(core)
		if ctx == inCell {
			core = strings.ReplaceAll(core, "|", `\|`)
		}
	} else {
		core = escapeText(core)
	}
	if lead != "" {
		before = ' '
	}
	if trail != "" {
		after = ' '
	}
	if href == "" && !flanking(core, st, before, after) {
		return lead + htmlEmphasis(core, st) + trail
	}
	switch {
	case st.has(styleBold) && st.has(styleItalic):
		core = "***" + core + "***"
	case st.has(styleBold):
		core = "**" + core + "**"
	case st.has(styleItalic):
		core = "*" + core + "*"
	}
	if st.has(styleStrike) {
		core = "~~" + core + "~~"
	}
	if href != "" {
		core = "[" + core + "](" + escapeURL(href) + ")"
	}
	return lead + core + trail
}

// flanking reports whether delimiter emphasis around core opens and closes
// under CommonMark's flanking rules given the surrounding characters.
func flanking(core string, st style, before, after rune) bool {
	if !st.has(styleBold) && !st.has(styleItalic) && !st.has(styleStrike) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(core)
	last, _ := utf8.DecodeLastRuneInString(core)
	if st.has(styleStrike) && (st.has(styleBold) || st.has(styleItalic)) {
		first, last = '*', '*'
	}
	if isPunct(first) && !isBoundary(before) {
		return false
	}
	return !isPunct(last) || isBoundary(after)
}

func htmlEmphasis(core string, st style) string {
	if st.has(styleItalic) {
		core = "<em>" + core + "</em>"
	}
	if st.has(styleBold) {
		core = "<strong>" + core + "</strong>"
	}
	if st.has(styleStrike) {
		core = "<del>" + core + "</del>"
	}
	return core
}

func isPunct(c rune) bool {
	return unicode.IsPunct(c) || unicode.IsSymbol(c)
}

func isBoundary(c rune) bool {
	return c == 0 || c == utf8.RuneError || unicode.IsSpace(c) || isPunct(c)
}

func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeft(s, " \t\n")
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRight(core, " \t\n")
	trail = core[len(trimmed):]
	return strings.ReplaceAll(lead, "\n", " "), trimmed, strings.ReplaceAll(trail, "\n", " ")
}

// image renders an image occurrence according to the mode. Occurrences
// without an asset render as the placeholder.
func (r *renderer) image(n *imageNode) string {
	asset, ok := r.assets[n.assetID]
	if !ok || r.mode == ImageOmit {
		return imagePlaceholder
	}
	alt := n.alt
	if alt == "" {
		alt = strings.TrimSuffix(asset.Name, path.Ext(asset.Name))
	}
	alt = escapeText(strings.TrimSpace(alt))
	r.used = append(r.used, asset.Name)

	if r.mode == ImageInline {
		return "![" + alt + "](data:" + asset.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(asset.Data) + ")"
	}
	return "![" + alt + "](images/" + asset.Name + ")"
}
