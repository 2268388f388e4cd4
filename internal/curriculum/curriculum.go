package curriculum

import (
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// subjects is the scheme of examination for the term, in display order
var subjects = []models.Subject{
	{Code: 101, Credit: 4, Name: "Discrete Structures"},
	{Code: 103, Credit: 3, Name: "Computer Networks"},
	{Code: 105, Credit: 3, Name: "Operating Systems with Linux"},
	{Code: 107, Credit: 3, Name: "Database Management Systems"},
	{Code: 109, Credit: 3, Name: "Object Oriented Programming with Java"},
	{Code: 161, Credit: 1, Name: "Computer Networks Lab"},
	{Code: 163, Credit: 1, Name: "Operating Systems Lab"},
	{Code: 165, Credit: 1, Name: "DBMS Lab"},
	{Code: 167, Credit: 1, Name: "OOP with Java Lab"},
	{Code: 169, Credit: 3, Name: "Minor Project – I"},
	{Code: 171, Credit: 1, Name: "Professional Proficiency – I"},
}

// gradeBands must stay sorted by MinMarks descending
var gradeBands = []models.GradeBand{
	{MinMarks: 90, Grade: models.GradeO, Point: 10},
	{MinMarks: 75, Grade: models.GradeAPlus, Point: 9},
	{MinMarks: 65, Grade: models.GradeA, Point: 8},
	{MinMarks: 55, Grade: models.GradeBPlus, Point: 7},
	{MinMarks: 50, Grade: models.GradeB, Point: 6},
	{MinMarks: 45, Grade: models.GradeC, Point: 5},
	{MinMarks: 40, Grade: models.GradeP, Point: 4},
}

// PassPoint is the lowest grade point that counts as a pass
const PassPoint = 4

var (
	subjectIndex = make(map[models.SubjectCode]models.Subject, len(subjects))
	totalCredits int
)

func init() {
	for _, s := range subjects {
		subjectIndex[s.Code] = s
		totalCredits += s.Credit
	}
}

// Subjects returns a copy of the curriculum in display order
func Subjects() []models.Subject {
	out := make([]models.Subject, len(subjects))
	copy(out, subjects)
	return out
}

// Codes returns the subject codes in display order
func Codes() []models.SubjectCode {
	codes := make([]models.SubjectCode, len(subjects))
	for i, s := range subjects {
		codes[i] = s.Code
	}
	return codes
}

// Lookup returns the subject for a code
func Lookup(code models.SubjectCode) (models.Subject, bool) {
	s, ok := subjectIndex[code]
	return s, ok
}

// Credit returns the credit weight of a subject, or 0 for an unknown code
func Credit(code models.SubjectCode) int {
	return subjectIndex[code].Credit
}

// Name returns the display name of a subject, or "" for an unknown code
func Name(code models.SubjectCode) string {
	return subjectIndex[code].Name
}

// TotalCredits returns the credit sum over every subject
func TotalCredits() int {
	return totalCredits
}

// GradeBands returns a copy of the grade thresholds, highest first
func GradeBands() []models.GradeBand {
	out := make([]models.GradeBand, len(gradeBands))
	copy(out, gradeBands)
	return out
}

// GradeAndPoint maps a mark to its grade and grade point.
// Bands are scanned from the top and the first band whose lower edge is met wins.
func GradeAndPoint(marks float64) (models.Grade, int) {
	for _, band := range gradeBands {
		if marks >= band.MinMarks {
			return band.Grade, band.Point
		}
	}
	return models.GradeF, 0
}
