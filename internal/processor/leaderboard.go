package processor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// ErrUnknownSubject is returned when a subject code is not in the curriculum
var ErrUnknownSubject = errors.New("unknown subject code")

// OverallLeaderboard orders students by SGPA descending, then name and roll
// number ascending, and numbers them 1..N.
func OverallLeaderboard(records []models.StudentRecord) []models.LeaderboardEntry {
	sorted := sortedCopy(records, func(a, b models.StudentRecord) int {
		return compareDesc(a.SGPA, b.SGPA)
	})

	entries := make([]models.LeaderboardEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = models.LeaderboardEntry{
			OverallRank: i + 1,
			RollNo:      r.RollNo,
			Name:        r.Name,
			SGPA:        r.SGPA,
			CGPA:        r.CGPA,
			Result:      r.Result,
		}
	}
	return entries
}

// SubjectLeaderboard orders students by their mark in one subject descending,
// then name and roll number ascending, and numbers them 1..N.
func SubjectLeaderboard(records []models.StudentRecord, code models.SubjectCode) ([]models.SubjectLeaderboardEntry, error) {
	if _, ok := curriculum.Lookup(code); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubject, code)
	}

	sorted := sortedCopy(records, func(a, b models.StudentRecord) int {
		return compareDesc(a.Marks[code], b.Marks[code])
	})

	entries := make([]models.SubjectLeaderboardEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = models.SubjectLeaderboardEntry{
			SubjectRank: i + 1,
			RollNo:      r.RollNo,
			Name:        r.Name,
			Subject:     code,
			Marks:       r.Marks[code],
			Grade:       r.Grades[code],
		}
	}
	return entries, nil
}

// sortedCopy sorts a copy of records by primary, breaking ties on name then roll number
func sortedCopy(records []models.StudentRecord, primary func(a, b models.StudentRecord) int) []models.StudentRecord {
	sorted := make([]models.StudentRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := primary(a, b); c != 0 {
			return c < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.RollNo < b.RollNo
	})
	return sorted
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
