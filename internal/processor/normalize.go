package processor

import (
	"math"
	"strconv"
	"strings"

	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

const (
	minMarks = 0
	maxMarks = 100
)

// NormalizeMark converts a raw cell into a mark. Blank, non-numeric (e.g. "AB"),
// non-finite and out-of-range values all become 0.
func NormalizeMark(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if value < minMarks || value > maxMarks {
		return 0
	}
	return value
}

// Normalize turns raw rows into student records carrying only normalized marks.
// Subjects missing from a row are treated as blank cells.
func Normalize(raw []models.RawStudent) []models.StudentRecord {
	records := make([]models.StudentRecord, 0, len(raw))
	for _, r := range raw {
		marks := make(map[models.SubjectCode]float64, len(curriculum.Codes()))
		for _, code := range curriculum.Codes() {
			marks[code] = NormalizeMark(r.Cells[code])
		}

		var extra []models.Column
		if len(r.Extra) > 0 {
			extra = make([]models.Column, len(r.Extra))
			copy(extra, r.Extra)
		}

		records = append(records, models.StudentRecord{
			RollNo: r.RollNo,
			Name:   r.Name,
			Marks:  marks,
			Extra:  extra,
		})
	}
	return records
}
