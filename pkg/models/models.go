package models

// SubjectCode identifies a subject in the curriculum (e.g. 101)
type SubjectCode int

// Subject is a curriculum entry with its credit weight
type Subject struct {
	Code   SubjectCode `json:"code"`
	Credit int         `json:"credit"`
	Name   string      `json:"name"`
}

// Grade is a letter grade assigned from a marks band
type Grade string

const (
	GradeO     Grade = "O"
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeP     Grade = "P"
	GradeF     Grade = "F"
)

// GradeBand maps marks at or above MinMarks to a grade and grade point
type GradeBand struct {
	MinMarks float64 `json:"minMarks"`
	Grade    Grade   `json:"grade"`
	Point    int     `json:"point"`
}

// Result is the pass/fail outcome of a student
type Result string

const (
	Pass Result = "PASS"
	Fail Result = "FAIL"
)

// Column is a pass-through input column kept in source order
type Column struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// RawStudent is one unprocessed input row
type RawStudent struct {
	RollNo string
	Name   string
	Cells  map[SubjectCode]string
	Extra  []Column
}

// StudentRecord is one fully processed student row
type StudentRecord struct {
	RollNo      string                  `json:"rollNo"`
	Name        string                  `json:"name"`
	Marks       map[SubjectCode]float64 `json:"marks"`
	Grades      map[SubjectCode]Grade   `json:"grades"`
	GradePoints map[SubjectCode]int     `json:"gradePoints"`
	SGPA        float64                 `json:"sgpa"`
	CGPA        float64                 `json:"cgpa"`
	Result      Result                  `json:"result"`
	Rank        int                     `json:"rank"`
	Extra       []Column                `json:"extra,omitempty"`
}

// SubjectPerformance is one line of a student's subject-wise breakdown
type SubjectPerformance struct {
	Code       SubjectCode `json:"code"`
	Name       string      `json:"name"`
	Marks      float64     `json:"marks"`
	Grade      Grade       `json:"grade"`
	GradePoint int         `json:"gradePoint"`
	Credit     int         `json:"credit"`
}

// LeaderboardEntry is a row of the overall topper list
type LeaderboardEntry struct {
	OverallRank int     `json:"overallRank"`
	RollNo      string  `json:"rollNo"`
	Name        string  `json:"name"`
	SGPA        float64 `json:"sgpa"`
	CGPA        float64 `json:"cgpa"`
	Result      Result  `json:"result"`
}

// SubjectLeaderboardEntry is a row of a subject-wise topper list
type SubjectLeaderboardEntry struct {
	SubjectRank int         `json:"subjectRank"`
	RollNo      string      `json:"rollNo"`
	Name        string      `json:"name"`
	Subject     SubjectCode `json:"subject"`
	Marks       float64     `json:"marks"`
	Grade       Grade       `json:"grade"`
}

// SubjectFailCount is the number of students failing a subject
type SubjectFailCount struct {
	Code      SubjectCode `json:"code"`
	Name      string      `json:"name"`
	FailCount int         `json:"failCount"`
}

// ClassSummary holds cohort-level headline numbers
type ClassSummary struct {
	Students    int     `json:"students"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	HighestSGPA float64 `json:"highestSgpa"`
	AverageSGPA float64 `json:"averageSgpa"`
}
