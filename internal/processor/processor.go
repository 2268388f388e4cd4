package processor

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// ResultProcessor runs the grading pipeline and logs a summary of each run
type ResultProcessor struct {
	Logger *logrus.Logger
}

// NewResultProcessor creates a new result processor
func NewResultProcessor(logger *logrus.Logger) *ResultProcessor {
	return &ResultProcessor{Logger: logger}
}

// Process computes the enriched table for a cohort
func (rp *ResultProcessor) Process(raw []models.RawStudent) []models.StudentRecord {
	records := Process(raw)

	summary := Summary(records)
	rp.Logger.WithFields(logrus.Fields{
		"students": summary.Students,
		"passed":   summary.Passed,
		"failed":   summary.Failed,
		"top_sgpa": summary.HighestSGPA,
	}).Info("Processed cohort results")

	if rp.Logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, fc := range ClassAnalytics(records) {
			rp.Logger.Debugf("Subject %d (%s): %d failing", fc.Code, fc.Name, fc.FailCount)
		}
	}

	return records
}

// Process normalizes marks, grades every subject, computes SGPA, CGPA and the
// pass/fail result, then assigns dense ranks. It does not modify its input.
func Process(raw []models.RawStudent) []models.StudentRecord {
	records := Normalize(raw)
	for i := range records {
		Grade(&records[i])
	}
	AssignRanks(records)
	return records
}

// Grade fills the per-subject grades and the student-level SGPA, CGPA and result
func Grade(record *models.StudentRecord) {
	codes := curriculum.Codes()
	record.Grades = make(map[models.SubjectCode]models.Grade, len(codes))
	record.GradePoints = make(map[models.SubjectCode]int, len(codes))

	for _, code := range codes {
		grade, point := curriculum.GradeAndPoint(record.Marks[code])
		record.Grades[code] = grade
		record.GradePoints[code] = point
	}

	record.SGPA = SGPA(record.GradePoints)
	// Single-term dataset: CGPA is the SGPA.
	record.CGPA = record.SGPA
	record.Result = ResultFor(record.GradePoints)
}

// SGPA returns the credit-weighted mean grade point over the whole curriculum,
// rounded half away from zero to two decimals. Missing subjects count as 0.
func SGPA(gradePoints map[models.SubjectCode]int) float64 {
	weighted := 0
	for _, s := range curriculum.Subjects() {
		weighted += s.Credit * gradePoints[s.Code]
	}

	total := curriculum.TotalCredits()
	// Integer hundredths keep the rounding exact.
	hundredths := (2*weighted*100 + total) / (2 * total)
	return float64(hundredths) / 100
}

// ResultFor is FAIL when any subject's grade point is below the pass point
func ResultFor(gradePoints map[models.SubjectCode]int) models.Result {
	for _, code := range curriculum.Codes() {
		if gradePoints[code] < curriculum.PassPoint {
			return models.Fail
		}
	}
	return models.Pass
}

// AssignRanks sets dense ranks by SGPA descending: equal SGPAs share a rank and
// the next lower SGPA takes the following integer. Record order is preserved.
func AssignRanks(records []models.StudentRecord) {
	seen := make(map[float64]bool)
	var distinct []float64
	for _, r := range records {
		if !seen[r.SGPA] {
			seen[r.SGPA] = true
			distinct = append(distinct, r.SGPA)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))

	rankOf := make(map[float64]int, len(distinct))
	for i, sgpa := range distinct {
		rankOf[sgpa] = i + 1
	}

	for i := range records {
		records[i].Rank = rankOf[records[i].SGPA]
	}
}
