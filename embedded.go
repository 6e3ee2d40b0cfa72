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
	"fmt"
	"strings"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
	"github.com/nicholasgasior/docx2md/internal/sheet"
)

// embeddedObject lowers the OLE object related by rid. Embedded workbooks
// become one table per non-empty sheet; everything else is skipped with a
// warning.
func (d *docxPackage) embeddedObject(rid, progID string) []node {
	label := "object"
	if progID != "" {
		label = progID + " object"
	}
	rel, ok := d.rels[rid]
	if rid == "" || !ok || rel.External() {
		d.warn(WarningObjectSkipped, "", fmt.Sprintf("embedded %s has no package in the document", label))
		return nil
	}
	part := ooxml.ResolveTarget(d.main, rel.Target)
	if !sheet.Supported(part) {
		d.warn(WarningObjectSkipped, part, fmt.Sprintf("embedded %s cannot be converted", label))
		return nil
	}
	data, err := d.pkg.ReadPart(part)
	if err != nil {
		d.warn(WarningObjectSkipped, part, fmt.Sprintf("embedded workbook could not be read: %v", err))
		return nil
	}
	sheets, err := sheet.Read(part, data)
	if err != nil {
		d.warn(WarningObjectSkipped, part, fmt.Sprintf("embedded workbook could not be read: %v", err))
		return nil
	}
	if len(sheets) == 0 {
		d.warn(WarningObjectSkipped, part, "embedded workbook is empty")
		return nil
	}

	var blocks []node
	for _, s := range sheets {
		if len(sheets) > 1 {
			blocks = append(blocks, &paragraphNode{children: []node{&runNode{text: s.Name, style: styleBold}}})
		}
		blocks = append(blocks, sheetTable(s.Rows))
	}
	return blocks
}

func sheetTable(rows [][]string) *tableNode {
	t := &tableNode{rows: len(rows)}
	for r, row := range rows {
		for c, value := range row {
			t.cells = append(t.cells, &tableCellNode{row: r, col: c, children: cellText(value)})
		}
		t.cols = max(t.cols, len(row))
	}
	return t
}

// cellText turns a spreadsheet value into one paragraph, keeping line breaks.
func cellText(value string) []node {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	var inline []node
	for i, line := range strings.Split(value, "\n") {
		if i > 0 {
			inline = append(inline, &breakNode{})
		}
		inline = append(inline, &runNode{text: strings.TrimRight(line, "\r")})
	}
	return []node{&paragraphNode{children: inline}}
}
