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

import "strings"

// node is a closed set of structural variants; only types in this file
// implement it.
type node interface {
	isNode()
}

// style is a set of inline formatting flags.
type style uint8

const (
	styleBold style = 1 << iota
	styleItalic
	styleCode
	styleStrike
	styleMath
)

func (s style) has(f style) bool { return s&f != 0 }

type documentNode struct {
	children []node
	// images lists image occurrences in document order.
	images []imageSource
	// notes holds footnote and endnote bodies in reference order.
	notes []noteBody
}

// imageSource ties an image occurrence to the package part holding its bytes.
// An occurrence whose relationship could not be resolved has neither part nor
// external set.
type imageSource struct {
	id       string
	ref      string
	part     string
	external string
}

type noteBody struct {
	label string
	text  string
}

type headingNode struct {
	level    int
	children []node
}

type paragraphNode struct {
	children []node
}

type listItemNode struct {
	depth    int
	ordered  bool
	children []node
}

type tableNode struct {
	rows, cols int
	cells      []*tableCellNode
}

type tableCellNode struct {
	row, col int
	children []node
}

type runNode struct {
	text  string
	style style
	href  string
}

type imageNode struct {
	assetID string
	alt     string
}

type breakNode struct{}

type codeBlockNode struct {
	lines []string
}

type mathBlockNode struct {
	latex string
}

// fragmentNode carries Markdown produced by an imported content converter.
type fragmentNode struct {
	markdown string
}

func (*documentNode) isNode()  {}
func (*headingNode) isNode()   {}
func (*paragraphNode) isNode() {}
func (*listItemNode) isNode()  {}
func (*tableNode) isNode()     {}
func (*tableCellNode) isNode() {}
func (*runNode) isNode()       {}
func (*imageNode) isNode()     {}
func (*breakNode) isNode()     {}
func (*codeBlockNode) isNode() {}
func (*mathBlockNode) isNode() {}
func (*fragmentNode) isNode()  {}

// plainText flattens a node to its text content.
func plainText(n node) string {
	switch n := n.(type) {
	case *runNode:
		return n.text
	case *breakNode:
		return "\n"
	case *imageNode:
		return n.alt
	case *codeBlockNode:
		return strings.Join(n.lines, "\n")
	case *mathBlockNode:
		return n.latex
	case *fragmentNode:
		return n.markdown
	}
	var b strings.Builder
	for _, c := range childrenOf(n) {
		b.WriteString(plainText(c))
	}
	return b.String()
}

func childrenOf(n node) []node {
	switch n := n.(type) {
	case *documentNode:
		return n.children
	case *headingNode:
		return n.children
	case *paragraphNode:
		return n.children
	case *listItemNode:
		return n.children
	case *tableCellNode:
		return n.children
	case *tableNode:
		out := make([]node, len(n.cells))
		for i, c := range n.cells {
			out[i] = c
		}
		return out
	}
	return nil
}

