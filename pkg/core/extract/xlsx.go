package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Compile-time interface check.
var _ Extractor = (*XLSXExtractor)(nil)

// XLSXExtractor reads the first sheet of an Excel workbook from memory.
type XLSXExtractor struct{}

func NewXLSXExtractor() *XLSXExtractor { return &XLSXExtractor{} }

func (e *XLSXExtractor) Extract(content []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return tableFromGrid(grid)
}
