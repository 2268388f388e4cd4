package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for export paths other than .csv and .xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

const sheetName = "Result"

// Table is a header plus rows ready for export. Numeric flags the columns
// whose values are written to workbooks as numbers; every other column stays text.
type Table struct {
	Header  []string
	Rows    [][]string
	Numeric []bool
}

func (t *Table) addColumn(header string, numeric bool) {
	t.Header = append(t.Header, header)
	t.Numeric = append(t.Numeric, numeric)
}

// EnrichedTable lays out processed records the way they are exported: roll
// number, name, pass-through columns, then marks, grade and grade point per
// subject, then SGPA, CGPA, Result and Rank.
func EnrichedTable(records []models.StudentRecord) Table {
	extras := extraHeaders(recordExtras(records))

	var t Table
	t.addColumn("Roll No", false)
	t.addColumn("Name", false)
	for _, h := range extras {
		t.addColumn(h, false)
	}
	for _, code := range curriculum.Codes() {
		c := strconv.Itoa(int(code))
		t.addColumn(c, true)
		t.addColumn(c+"_Grade", false)
		t.addColumn(c+"_GP", true)
	}
	t.addColumn("SGPA", true)
	t.addColumn("CGPA", true)
	t.addColumn("Result", false)
	t.addColumn("Rank", true)

	t.Rows = make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{r.RollNo, r.Name}
		row = append(row, extraValues(r.Extra, len(extras))...)

		for _, code := range curriculum.Codes() {
			row = append(row,
				formatMarks(r.Marks[code]),
				string(r.Grades[code]),
				strconv.Itoa(r.GradePoints[code]),
			)
		}
		row = append(row,
			fmt.Sprintf("%.2f", r.SGPA),
			fmt.Sprintf("%.2f", r.CGPA),
			string(r.Result),
			strconv.Itoa(r.Rank),
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// MarksTable lays out raw rows as a marks sheet the loader can read back
func MarksTable(students []models.RawStudent) Table {
	extras := make([][]models.Column, len(students))
	for i, s := range students {
		extras[i] = s.Extra
	}
	extraHeads := extraHeaders(extras)

	var t Table
	t.addColumn("Roll No", false)
	t.addColumn("Name", false)
	for _, code := range curriculum.Codes() {
		t.addColumn(strconv.Itoa(int(code)), true)
	}
	for _, h := range extraHeads {
		t.addColumn(h, false)
	}

	t.Rows = make([][]string, 0, len(students))
	for _, s := range students {
		row := []string{s.RollNo, s.Name}
		for _, code := range curriculum.Codes() {
			row = append(row, s.Cells[code])
		}
		row = append(row, extraValues(s.Extra, len(extraHeads))...)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV writes a table as CSV
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a table to a single-sheet workbook. Cells in numeric
// columns holding a finite number are stored as numbers so spreadsheets can
// sort and sum them.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, t.Header, nil); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row, t.Numeric); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []string, numeric []bool) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
		if i >= len(numeric) || !numeric[i] {
			continue
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			cells[i] = n
		}
	}

	axis, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, axis, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// ExportFile writes a table to path, choosing CSV or XLSX from the extension
func ExportFile(path string, t Table) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if ext == ".csv" {
		err = WriteCSV(f, t)
	} else {
		err = WriteXLSX(f, t)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func recordExtras(records []models.StudentRecord) [][]models.Column {
	extras := make([][]models.Column, len(records))
	for i, r := range records {
		extras[i] = r.Extra
	}
	return extras
}

// extraHeaders returns the pass-through headers by position. Headers may
// repeat or be blank, so columns are matched by index rather than by name.
func extraHeaders(rows [][]models.Column) []string {
	var headers []string
	for _, cols := range rows {
		for i := len(headers); i < len(cols); i++ {
			headers = append(headers, cols[i].Header)
		}
	}
	return headers
}

// extraValues returns the pass-through values padded to n columns
func extraValues(cols []models.Column, n int) []string {
	values := make([]string, n)
	for i := 0; i < n && i < len(cols); i++ {
		values[i] = cols[i].Value
	}
	return values
}
