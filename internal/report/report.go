package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/internal/processor"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

func banner(w io.Writer, title string, width int) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", width))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", width))
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintClassSummary prints the headline numbers for the cohort
func PrintClassSummary(w io.Writer, summary models.ClassSummary) {
	banner(w, "CLASS RESULT SUMMARY", 50)
	fmt.Fprintf(w, "Students:        %d\n", summary.Students)
	fmt.Fprintf(w, "Passed:          %d\n", summary.Passed)
	fmt.Fprintf(w, "Failed:          %d\n", summary.Failed)
	fmt.Fprintf(w, "Highest SGPA:    %.2f\n", summary.HighestSGPA)
	fmt.Fprintf(w, "Average SGPA:    %.2f\n", summary.AverageSGPA)
	fmt.Fprintln(w, strings.Repeat("=", 50))
}

// PrintStudentSummary prints one student's headline figures and subject-wise performance
func PrintStudentSummary(w io.Writer, record models.StudentRecord) {
	banner(w, "STUDENT ACADEMIC SUMMARY", 80)
	fmt.Fprintf(w, "Roll No: %s\n", record.RollNo)
	fmt.Fprintf(w, "Name:    %s\n", record.Name)
	fmt.Fprintf(w, "SGPA:    %.2f\n", record.SGPA)
	fmt.Fprintf(w, "CGPA:    %.2f\n", record.CGPA)
	fmt.Fprintf(w, "Rank:    %d\n", record.Rank)
	if record.Result == models.Pass {
		fmt.Fprintln(w, "Result:  ✅ PASS")
	} else {
		fmt.Fprintln(w, "Result:  ❌ FAIL")
	}

	fmt.Fprintln(w, "\nSUBJECT-WISE PERFORMANCE")
	fmt.Fprintf(w, "   %-5s %-40s %6s %5s %3s %7s\n", "Code", "Subject", "Marks", "Grade", "GP", "Credits")
	for _, row := range processor.SubjectBreakdown(record) {
		fmt.Fprintf(w, "   %-5d %-40s %6s %5s %3d %7d\n",
			row.Code, row.Name, formatMarks(row.Marks), row.Grade, row.GradePoint, row.Credit)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// PrintClassAnalytics prints the fail count of every subject
func PrintClassAnalytics(w io.Writer, counts []models.SubjectFailCount) {
	banner(w, "CLASS ANALYTICS", 60)
	fmt.Fprintf(w, "   %-5s %-40s %10s\n", "Code", "Subject", "Fail Count")
	for _, c := range counts {
		fmt.Fprintf(w, "   %-5d %-40s %10d\n", c.Code, c.Name, c.FailCount)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

// PrintOverallLeaderboard prints the SGPA topper list. top <= 0 prints every entry.
func PrintOverallLeaderboard(w io.Writer, entries []models.LeaderboardEntry, top int) {
	banner(w, "OVERALL TOPPER LIST (SGPA RANK-WISE)", 80)
	fmt.Fprintf(w, "   %4s  %-12s %-30s %5s %5s %6s\n", "Rank", "Roll No", "Name", "SGPA", "CGPA", "Result")
	for i, e := range entries {
		if top > 0 && i >= top {
			break
		}
		fmt.Fprintf(w, "   %4d  %-12s %-30s %5.2f %5.2f %6s\n", e.OverallRank, e.RollNo, e.Name, e.SGPA, e.CGPA, e.Result)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// PrintSubjectLeaderboard prints the topper list for one subject. top <= 0 prints every entry.
func PrintSubjectLeaderboard(w io.Writer, code models.SubjectCode, entries []models.SubjectLeaderboardEntry, top int) {
	banner(w, fmt.Sprintf("SUBJECT TOPPER LIST: %d - %s", code, curriculum.Name(code)), 80)
	fmt.Fprintf(w, "   %4s  %-12s %-30s %6s %5s\n", "Rank", "Roll No", "Name", "Marks", "Grade")
	for i, e := range entries {
		if top > 0 && i >= top {
			break
		}
		fmt.Fprintf(w, "   %4d  %-12s %-30s %6s %5s\n", e.SubjectRank, e.RollNo, e.Name, formatMarks(e.Marks), e.Grade)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

// PrintCurriculum prints the subject credits and the grade bands
func PrintCurriculum(w io.Writer) {
	banner(w, "SCHEME OF EXAMINATION", 60)
	fmt.Fprintf(w, "   %-5s %-40s %7s\n", "Code", "Subject", "Credits")
	for _, s := range curriculum.Subjects() {
		fmt.Fprintf(w, "   %-5d %-40s %7d\n", s.Code, s.Name, s.Credit)
	}
	fmt.Fprintf(w, "   %-46s %7d\n", "Total", curriculum.TotalCredits())

	fmt.Fprintln(w, "\nGRADING")
	bands := curriculum.GradeBands()
	for _, b := range bands {
		fmt.Fprintf(w, "   >= %-5s %-3s %2d\n", formatMarks(b.MinMarks), b.Grade, b.Point)
	}
	fmt.Fprintf(w, "   <  %-5s %-3s %2d\n", formatMarks(bands[len(bands)-1].MinMarks), models.GradeF, 0)
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
