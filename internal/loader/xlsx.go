package loader

import (
	"fmt"
	"io"

	"github.com/vitebski/mca-result-processor/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses a marks sheet from an Excel workbook. An empty sheet name
// selects the first worksheet.
func ReadXLSX(r io.Reader, sheet string) ([]models.RawStudent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyInput
		}
		sheet = sheets[0]
	}

	// Marks are graded on the stored value, not the cell's display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	return parseTable(rows[0], rows[1:])
}
