package processor

import (
	"math"
	"sort"

	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// ClassAnalytics counts, per subject, the students with a zero grade point
func ClassAnalytics(records []models.StudentRecord) []models.SubjectFailCount {
	counts := make([]models.SubjectFailCount, 0, len(curriculum.Codes()))
	for _, s := range curriculum.Subjects() {
		failing := 0
		for _, r := range records {
			if r.GradePoints[s.Code] == 0 {
				failing++
			}
		}
		counts = append(counts, models.SubjectFailCount{
			Code:      s.Code,
			Name:      s.Name,
			FailCount: failing,
		})
	}
	return counts
}

// Summary reports cohort size, pass/fail totals and SGPA headline figures
func Summary(records []models.StudentRecord) models.ClassSummary {
	summary := models.ClassSummary{Students: len(records)}
	if len(records) == 0 {
		return summary
	}

	var total float64
	summary.HighestSGPA = records[0].SGPA
	for _, r := range records {
		if r.Result == models.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
		if r.SGPA > summary.HighestSGPA {
			summary.HighestSGPA = r.SGPA
		}
		total += r.SGPA
	}
	summary.AverageSGPA = math.Round(total/float64(len(records))*100) / 100
	return summary
}

// FindByName returns the first record, in table order, with exactly this name
func FindByName(records []models.StudentRecord, name string) (models.StudentRecord, bool) {
	for _, r := range records {
		if r.Name == name {
			return r, true
		}
	}
	return models.StudentRecord{}, false
}

// FindByRollNo returns the record with this roll number
func FindByRollNo(records []models.StudentRecord, rollNo string) (models.StudentRecord, bool) {
	for _, r := range records {
		if r.RollNo == rollNo {
			return r, true
		}
	}
	return models.StudentRecord{}, false
}

// Names returns the distinct student names, sorted
func Names(records []models.StudentRecord) []string {
	seen := make(map[string]bool, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names
}

// SubjectBreakdown lists a student's performance in every subject, in curriculum order
func SubjectBreakdown(record models.StudentRecord) []models.SubjectPerformance {
	rows := make([]models.SubjectPerformance, 0, len(curriculum.Codes()))
	for _, s := range curriculum.Subjects() {
		rows = append(rows, models.SubjectPerformance{
			Code:       s.Code,
			Name:       s.Name,
			Marks:      record.Marks[s.Code],
			Grade:      record.Grades[s.Code],
			GradePoint: record.GradePoints[s.Code],
			Credit:     s.Credit,
		})
	}
	return rows
}
