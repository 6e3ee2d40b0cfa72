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

// Package sheet reads the cell grid of spreadsheets embedded in Word
// documents.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupported is returned for embedded parts that are not spreadsheets.
var ErrUnsupported = errors.New("unsupported embedded object")

// Sheet is one non-empty worksheet.
type Sheet struct {
	Name string
	Rows [][]string
}

// Supported reports whether the part name looks like a workbook this package
// can read.
func Supported(part string) bool {
	switch strings.ToLower(path.Ext(part)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// Read returns the non-empty sheets of the workbook stored in part.
func Read(part string, data []byte) ([]Sheet, error) {
	switch strings.ToLower(path.Ext(part)) {
	case ".xlsx", ".xlsm":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	}
	return nil, fmt.Errorf("%s: %w", part, ErrUnsupported)
}

func readXLSX(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if rows = trim(rows); len(rows) > 0 {
			sheets = append(sheets, Sheet{Name: name, Rows: rows})
		}
	}
	return sheets, nil
}

// readXLS reads a legacy workbook. extrame/xls panics on some malformed BIFF
// streams, so the panic is turned into an error.
func readXLS(data []byte) (sheets []Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("open XLS: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		name := ws.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if rows = trim(rows); len(rows) > 0 {
			sheets = append(sheets, Sheet{Name: name, Rows: rows})
		}
	}
	return sheets, nil
}

// trim drops trailing empty rows and trailing empty cells.
func trim(rows [][]string) [][]string {
	for i, row := range rows {
		end := len(row)
		for end > 0 && strings.TrimSpace(row[end-1]) == "" {
			end--
		}
		rows[i] = row[:end]
	}
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}
