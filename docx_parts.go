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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
)

type valAttr struct {
	Val string `xml:"val,attr"`
}

type numPr struct {
	Ilvl  *valAttr `xml:"ilvl"`
	NumID *valAttr `xml:"numId"`
}

// paragraphProps is the subset of w:pPr the parser reads.
type paragraphProps struct {
	PStyle     *valAttr `xml:"pStyle"`
	NumPr      *numPr   `xml:"numPr"`
	OutlineLvl *valAttr `xml:"outlineLvl"`
}

// styleDef holds the parts of a w:style definition that affect structure.
type styleDef struct {
	name    string
	basedOn string
	outline int
	numID   string
	ilvl    int
}

type styleSheet map[string]styleDef

var reHeadingName = regexp.MustCompile(`^heading\s*([1-9])$`)

func parseStyles(data []byte) (styleSheet, error) {
	var doc struct {
		Styles []struct {
			StyleID string         `xml:"styleId,attr"`
			Name    valAttr        `xml:"name"`
			BasedOn valAttr        `xml:"basedOn"`
			PPr     paragraphProps `xml:"pPr"`
		} `xml:"style"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	styles := make(styleSheet, len(doc.Styles))
	for _, s := range doc.Styles {
		def := styleDef{name: s.Name.Val, basedOn: s.BasedOn.Val, outline: -1}
		if s.PPr.OutlineLvl != nil {
			if lvl, err := strconv.Atoi(s.PPr.OutlineLvl.Val); err == nil {
				def.outline = lvl
			}
		}
		if np := s.PPr.NumPr; np != nil {
			if np.NumID != nil {
				def.numID = np.NumID.Val
			}
			if np.Ilvl != nil {
				def.ilvl, _ = strconv.Atoi(np.Ilvl.Val)
			}
		}
		styles[s.StyleID] = def
	}
	return styles, nil
}

// resolve walks the basedOn chain of id, calling fn until it reports a match.
// An undefined style is offered by id only and ends the chain.
func (s styleSheet) resolve(id string, fn func(id string, def styleDef) bool) bool {
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		def, ok := s[id]
		if !ok {
			return fn(id, styleDef{outline: -1})
		}
		if fn(id, def) {
			return true
		}
		id = def.basedOn
	}
	return false
}

// headingLevel returns 1-6 for heading styles and 0 otherwise. Styles are
// recognized by id or name ("Heading 2", "heading2", "Title") or by an outline
// level, following the basedOn chain.
func (s styleSheet) headingLevel(id string) int {
	level := 0
	s.resolve(id, func(id string, def styleDef) bool {
		for _, name := range []string{strings.ToLower(id), strings.ToLower(def.name)} {
			if m := reHeadingName.FindStringSubmatch(name); m != nil {
				level, _ = strconv.Atoi(m[1])
				return true
			}
			if name == "title" {
				level = 1
				return true
			}
		}
		if def.outline >= 0 && def.outline < 9 {
			level = def.outline + 1
			return true
		}
		return false
	})
	return clampHeading(level)
}

func clampHeading(level int) int {
	if level > 6 {
		return 6
	}
	return level
}

// isCode reports whether the style marks preformatted code.
func (s styleSheet) isCode(id string) bool {
	return s.resolve(id, func(id string, def styleDef) bool {
		return codeStyleName(id) || codeStyleName(def.name)
	})
}

func codeStyleName(name string) bool {
	n := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	return strings.Contains(n, "code") || strings.Contains(n, "preformatted") || n == "verbatim" || n == "plaintext"
}

// listStyle returns the numbering attached to a paragraph style, or a
// synthetic numbering for the built-in "List Bullet"/"List Number" styles.
func (s styleSheet) listStyle(id string) (numID string, ilvl int, ordered, ok bool) {
	s.resolve(id, func(id string, def styleDef) bool {
		if def.numID != "" {
			numID, ilvl, ok = def.numID, def.ilvl, true
			return true
		}
		name := strings.ToLower(def.name)
		switch {
		case strings.HasPrefix(name, "list bullet"):
			ok = true
		case strings.HasPrefix(name, "list number"):
			ordered, ok = true, true
		}
		if ok {
			if n := name[len(name)-1]; n >= '2' && n <= '9' {
				ilvl = int(n-'0') - 1
			}
		}
		return ok
	})
	return numID, ilvl, ordered, ok
}

// numbering maps w:numId to the number format of each list level.
type numbering struct {
	formats map[string]map[int]string
}

func parseNumbering(data []byte) (numbering, error) {
	var doc struct {
		Abstract []struct {
			ID     string `xml:"abstractNumId,attr"`
			Levels []struct {
				Ilvl   int     `xml:"ilvl,attr"`
				NumFmt valAttr `xml:"numFmt"`
			} `xml:"lvl"`
		} `xml:"abstractNum"`
		Nums []struct {
			ID       string  `xml:"numId,attr"`
			Abstract valAttr `xml:"abstractNumId"`
		} `xml:"num"`
	}
	n := numbering{formats: map[string]map[int]string{}}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return n, err
	}
	abstract := make(map[string]map[int]string, len(doc.Abstract))
	for _, a := range doc.Abstract {
		levels := make(map[int]string, len(a.Levels))
		for _, l := range a.Levels {
			levels[l.Ilvl] = l.NumFmt.Val
		}
		abstract[a.ID] = levels
	}
	for _, num := range doc.Nums {
		n.formats[num.ID] = abstract[num.Abstract.Val]
	}
	return n, nil
}

// ordered reports whether a list level is numbered rather than bulleted.
// Unknown definitions are treated as bullets.
func (n numbering) ordered(numID string, ilvl int) bool {
	format := n.formats[numID][ilvl]
	switch format {
	case "", "bullet", "none":
		return false
	}
	return true
}

type comment struct {
	author string
	text   string
}

// collectText gathers the text of every element named container (comment,
// footnote, endnote) keyed by its w:id. Paragraphs are joined with a space.
func collectText(data []byte, container string, fn func(id string, start xml.StartElement, text string)) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	var (
		inItem  bool
		inText  bool
		current xml.StartElement
		id      string
		buf     strings.Builder
		paras   int
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case container:
				inItem, current, paras = true, t.Copy(), 0
				id = ooxml.Attr(t, "id")
				buf.Reset()
			case "p":
				if inItem && paras > 0 && buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				paras++
			case "t":
				inText = inItem
			case "tab":
				if inItem {
					buf.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case container:
				if inItem {
					fn(id, current, strings.TrimSpace(buf.String()))
				}
				inItem = false
			}
		}
	}
}

func parseComments(data []byte) (map[string]comment, error) {
	comments := map[string]comment{}
	err := collectText(data, "comment", func(id string, start xml.StartElement, text string) {
		comments[id] = comment{author: ooxml.Attr(start, "author"), text: text}
	})
	return comments, err
}

func parseNotes(data []byte, container string) (map[string]string, error) {
	notes := map[string]string{}
	err := collectText(data, container, func(id string, start xml.StartElement, text string) {
		switch ooxml.Attr(start, "type") {
		case "separator", "continuationSeparator", "continuationNotice":
			return
		}
		notes[id] = text
	})
	return notes, err
}

// coreProperties is the subset of docProps/core.xml surfaced in results.
type coreProperties struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
	Subject string `xml:"subject"`
}

func parseCoreProperties(data []byte) (coreProperties, error) {
	var props coreProperties
	if err := xml.Unmarshal(data, &props); err != nil {
		return props, fmt.Errorf("decode core properties: %w", err)
	}
	props.Title = strings.TrimSpace(props.Title)
	props.Creator = strings.TrimSpace(props.Creator)
	props.Subject = strings.TrimSpace(props.Subject)
	return props, nil
}

// onOff interprets a WordprocessingML toggle property such as w:b. The
// property is on unless its w:val says otherwise.
func onOff(v *valAttr) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(v.Val) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}
