// Package extract turns uploaded spreadsheet bytes into ordered,
// header-keyed rows. Only the first sheet of a workbook is read; blank rows
// are dropped.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// RawRow maps an original column header to the raw cell text.
type RawRow map[string]string

// RawTable is the output contract of an extractor: the header row in
// original order plus one RawRow per non-blank data row.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// Extractor converts file content into a RawTable.
type Extractor interface {
	Extract(content []byte) (*RawTable, error)
}

// xlsx files are zip archives.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// ForFile picks an extractor from the file extension, falling back to
// content sniffing when the extension is unhelpful.
func ForFile(name string, content []byte) Extractor {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return NewXLSXExtractor()
	case ".csv", ".txt":
		return NewCSVExtractor()
	}
	if bytes.HasPrefix(content, zipMagic) {
		return NewXLSXExtractor()
	}
	return NewCSVExtractor()
}

// tableFromGrid builds a RawTable from a row/column grid. The first
// non-empty row is the header; rows with no non-blank cells are skipped.
func tableFromGrid(grid [][]string) (*RawTable, error) {
	headerIdx := -1
	for i, row := range grid {
		if !rowBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, fmt.Errorf("no header row found")
	}

	headers := make([]string, 0, len(grid[headerIdx]))
	for _, h := range grid[headerIdx] {
		headers = append(headers, strings.TrimSpace(h))
	}

	table := &RawTable{Headers: headers}
	for _, row := range grid[headerIdx+1:] {
		if rowBlank(row) {
			continue
		}
		raw := make(RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				raw[h] = strings.TrimSpace(row[i])
			} else {
				raw[h] = ""
			}
		}
		table.Rows = append(table.Rows, raw)
	}
	return table, nil
}

func rowBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
