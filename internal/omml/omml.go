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

// Package omml lowers Office Math Markup (m:oMath, m:oMathPara) to LaTeX.
package omml

import (
	"encoding/xml"
	"strings"
)

// Element is a generic OMML element decoded with xml.Decoder.DecodeElement.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Element  `xml:",any"`
	Content  string     `xml:",chardata"`
}

func (e *Element) child(name string) *Element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

// val returns the m:val attribute of the named property child of a *Pr element.
func (e *Element) val(prop string) string {
	if e == nil {
		return ""
	}
	c := e.child(prop)
	if c == nil {
		return ""
	}
	for _, a := range c.Attrs {
		if a.Name.Local == "val" {
			return a.Value
		}
	}
	return ""
}

// Decode reads the element opened by start from d.
func Decode(d *xml.Decoder, start xml.StartElement) (*Element, error) {
	var el Element
	if err := d.DecodeElement(&el, &start); err != nil {
		return nil, err
	}
	return &el, nil
}

// ToLaTeX converts an oMath or oMathPara element. Equations inside an
// oMathPara are joined with a LaTeX line break.
func ToLaTeX(el *Element) string {
	if el == nil {
		return ""
	}
	if el.XMLName.Local == "oMathPara" {
		var parts []string
		for i := range el.Children {
			if el.Children[i].XMLName.Local == "oMath" {
				if s := strings.TrimSpace(convert(&el.Children[i])); s != "" {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, ` \\ `)
	}
	return strings.TrimSpace(convert(el))
}

// convert dispatches on the element's local name. Unknown containers are
// transparent.
func convert(el *Element) string {
	switch el.XMLName.Local {
	case "r":
		return run(el)
	case "f":
		return fraction(el)
	case "sSub":
		return arg(el, "e") + "_{" + arg(el, "sub") + "}"
	case "sSup":
		return arg(el, "e") + "^{" + arg(el, "sup") + "}"
	case "sSubSup":
		return arg(el, "e") + "_{" + arg(el, "sub") + "}^{" + arg(el, "sup") + "}"
	case "sPre":
		return "{}_{" + arg(el, "sub") + "}^{" + arg(el, "sup") + "}" + arg(el, "e")
	case "rad":
		return radical(el)
	case "d":
		return delimiter(el)
	case "nary":
		return nary(el)
	case "func":
		return function(el)
	case "acc":
		return accent(el)
	case "bar":
		if el.child("barPr").val("pos") == "bot" {
			return `\underline{` + arg(el, "e") + "}"
		}
		return `\overline{` + arg(el, "e") + "}"
	case "groupChr":
		if el.child("groupChrPr").val("pos") == "top" {
			return `\overbrace{` + arg(el, "e") + "}"
		}
		return `\underbrace{` + arg(el, "e") + "}"
	case "limLow":
		return arg(el, "e") + "_{" + arg(el, "lim") + "}"
	case "limUpp":
		return arg(el, "e") + "^{" + arg(el, "lim") + "}"
	case "m":
		return matrix(el)
	case "eqArr":
		var rows []string
		for i := range el.Children {
			if el.Children[i].XMLName.Local == "e" {
				rows = append(rows, children(&el.Children[i]))
			}
		}
		return `\begin{array}{l}` + strings.Join(rows, ` \\ `) + `\end{array}`
	case "t":
		return escape(el.Content)
	}
	if strings.HasSuffix(el.XMLName.Local, "Pr") || el.XMLName.Local == "ctrlPr" {
		return ""
	}
	return children(el)
}

func children(el *Element) string {
	var b strings.Builder
	for i := range el.Children {
		b.WriteString(convert(&el.Children[i]))
	}
	return b.String()
}

// arg converts the named argument child (e, sub, sup, num, den, deg, lim).
func arg(el *Element, name string) string {
	c := el.child(name)
	if c == nil {
		return ""
	}
	return children(c)
}

func run(el *Element) string {
	var b strings.Builder
	for i := range el.Children {
		c := &el.Children[i]
		if c.XMLName.Local != "t" {
			continue
		}
		for _, r := range c.Content {
			if sym, ok := symbols[r]; ok {
				b.WriteString(sym)
				continue
			}
			b.WriteString(escape(string(r)))
		}
	}
	return b.String()
}

func fraction(el *Element) string {
	num, den := arg(el, "num"), arg(el, "den")
	switch el.child("fPr").val("type") {
	case "lin":
		return num + "/" + den
	case "noBar":
		return `\genfrac{}{}{0pt}{}{` + num + "}{" + den + "}"
	case "skw":
		return `{}^{` + num + `}/_{` + den + "}"
	}
	return `\frac{` + num + "}{" + den + "}"
}

func radical(el *Element) string {
	deg := arg(el, "deg")
	if deg == "" || el.child("radPr").val("degHide") == "1" {
		return `\sqrt{` + arg(el, "e") + "}"
	}
	return `\sqrt[` + deg + "]{" + arg(el, "e") + "}"
}

func delimiter(el *Element) string {
	pr := el.child("dPr")
	left, right := "(", ")"
	if pr != nil && pr.child("begChr") != nil {
		left = pr.val("begChr")
	}
	if pr != nil && pr.child("endChr") != nil {
		right = pr.val("endChr")
	}
	sep := pr.val("sepChr")
	if sep == "" {
		sep = "|"
	}
	var parts []string
	for i := range el.Children {
		if el.Children[i].XMLName.Local == "e" {
			parts = append(parts, children(&el.Children[i]))
		}
	}
	return `\left` + fence(left) + strings.Join(parts, sep) + `\right` + fence(right)
}

func fence(s string) string {
	switch s {
	case "":
		return "."
	case "{":
		return `\{`
	case "}":
		return `\}`
	case "⟨", "〈":
		return `\langle`
	case "⟩", "〉":
		return `\rangle`
	case "‖":
		return `\|`
	case "⌊":
		return `\lfloor`
	case "⌋":
		return `\rfloor`
	case "⌈":
		return `\lceil`
	case "⌉":
		return `\rceil`
	}
	return s
}

func nary(el *Element) string {
	pr := el.child("naryPr")
	chr := pr.val("chr")
	op, ok := naryOperators[chr]
	if !ok {
		if chr == "" {
			op = `\int`
		} else {
			op = chr
		}
	}
	var b strings.Builder
	b.WriteString(op)
	if sub := arg(el, "sub"); sub != "" && pr.val("subHide") != "1" {
		b.WriteString("_{" + sub + "}")
	}
	if sup := arg(el, "sup"); sup != "" && pr.val("supHide") != "1" {
		b.WriteString("^{" + sup + "}")
	}
	b.WriteString(" ")
	b.WriteString(arg(el, "e"))
	return b.String()
}

func function(el *Element) string {
	name := strings.TrimSpace(arg(el, "fName"))
	if f, ok := functions[name]; ok {
		name = f
	}
	return name + "{" + arg(el, "e") + "}"
}

func accent(el *Element) string {
	chr := el.child("accPr").val("chr")
	if chr == "" {
		chr = "̂"
	}
	cmd, ok := accents[chr]
	if !ok {
		cmd = `\hat`
	}
	return cmd + "{" + arg(el, "e") + "}"
}

func matrix(el *Element) string {
	var rows []string
	for i := range el.Children {
		mr := &el.Children[i]
		if mr.XMLName.Local != "mr" {
			continue
		}
		var cells []string
		for j := range mr.Children {
			if mr.Children[j].XMLName.Local == "e" {
				cells = append(cells, children(&mr.Children[j]))
			}
		}
		rows = append(rows, strings.Join(cells, " & "))
	}
	return `\begin{matrix}` + strings.Join(rows, ` \\ `) + `\end{matrix}`
}

// escape backslash-escapes LaTeX special characters in literal text.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '{', '}', '_', '^', '#', '&', '$', '%', '~':
			b.WriteByte('\\')
		case '\\':
			b.WriteString(`\backslash `)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
