package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Compile-time interface check.
var _ Extractor = (*CSVExtractor)(nil)

// CSVExtractor reads comma-separated content. Lazy quoting is enabled
// because exported spreadsheets are rarely strict about it.
type CSVExtractor struct{}

func NewCSVExtractor() *CSVExtractor { return &CSVExtractor{} }

func (e *CSVExtractor) Extract(content []byte) (*RawTable, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var grid [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		grid = append(grid, record)
	}
	return tableFromGrid(grid)
}
