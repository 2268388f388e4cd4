package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the header row
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrEmptyInput is returned when the input has no header row
	ErrEmptyInput = errors.New("input has no header row")
)

// MarksLoader reads a marks sheet from disk
type MarksLoader struct {
	Sheet  string
	Logger *logrus.Logger
}

// NewMarksLoader creates a new marks loader. An empty sheet selects the first worksheet.
func NewMarksLoader(sheet string, logger *logrus.Logger) *MarksLoader {
	return &MarksLoader{Sheet: sheet, Logger: logger}
}

// LoadFile reads a .csv or .xlsx marks sheet
func (ml *MarksLoader) LoadFile(path string) ([]models.RawStudent, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var students []models.RawStudent
	if ext == ".csv" {
		students, err = ReadCSV(f)
	} else {
		students, err = ReadXLSX(f, ml.Sheet)
	}
	if err != nil {
		ml.Logger.Errorf("Error reading marks from %s: %v", path, err)
		return nil, err
	}

	ml.Logger.Infof("Loaded %d students from %s", len(students), path)
	return students, nil
}

// columnLayout records where each recognized column sits in a row
type columnLayout struct {
	rollNo   int
	name     int
	subjects map[models.SubjectCode]int
	extra    map[int]string
}

// parseTable turns a header row and data rows into raw students.
// Blank rows are skipped; unrecognized columns pass through as Extra.
func parseTable(headers []string, rows [][]string) ([]models.RawStudent, error) {
	layout, err := mapHeaders(headers)
	if err != nil {
		return nil, err
	}

	var students []models.RawStudent
	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		s := models.RawStudent{
			RollNo: normalizeRollNo(cell(row, layout.rollNo)),
			Name:   cell(row, layout.name),
			Cells:  make(map[models.SubjectCode]string, len(layout.subjects)),
		}
		for code, idx := range layout.subjects {
			s.Cells[code] = cell(row, idx)
		}
		for idx := range headers {
			if header, ok := layout.extra[idx]; ok {
				s.Extra = append(s.Extra, models.Column{Header: header, Value: cell(row, idx)})
			}
		}
		students = append(students, s)
	}
	return students, nil
}

func mapHeaders(headers []string) (columnLayout, error) {
	layout := columnLayout{
		rollNo:   -1,
		name:     -1,
		subjects: make(map[models.SubjectCode]int),
		extra:    make(map[int]string),
	}

	for i, h := range headers {
		header := strings.TrimSpace(h)
		key := headerKey(header)

		switch {
		case layout.rollNo < 0 && (key == "rollno" || key == "rollnumber"):
			layout.rollNo = i
		case layout.name < 0 && key == "name":
			layout.name = i
		default:
			if code, ok := subjectHeader(header); ok {
				if _, dup := layout.subjects[code]; !dup {
					layout.subjects[code] = i
					continue
				}
			}
			layout.extra[i] = header
		}
	}

	var missing []string
	if layout.rollNo < 0 {
		missing = append(missing, "Roll No")
	}
	if layout.name < 0 {
		missing = append(missing, "Name")
	}
	for _, code := range curriculum.Codes() {
		if _, ok := layout.subjects[code]; !ok {
			missing = append(missing, strconv.Itoa(int(code)))
		}
	}
	if len(missing) > 0 {
		return layout, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return layout, nil
}

// headerKey lowercases a header and drops spaces, underscores and dashes
func headerKey(h string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(strings.ToLower(h))
}

// subjectHeader accepts "101" and spreadsheet-style "101.0"
func subjectHeader(h string) (models.SubjectCode, bool) {
	f, err := strconv.ParseFloat(h, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	code := models.SubjectCode(int(f))
	if _, ok := curriculum.Lookup(code); !ok {
		return 0, false
	}
	return code, true
}

// normalizeRollNo renders numeric roll numbers read as floats ("12.0") as integers
func normalizeRollNo(v string) string {
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int64(f)) && strings.Contains(v, ".") {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
