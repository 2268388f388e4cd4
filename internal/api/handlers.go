package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/internal/processor"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// ResultsHandler serves a processed results table. The table is computed once
// and never mutated, so handlers share it without locking.
type ResultsHandler struct {
	records []models.StudentRecord
	logger  *logrus.Logger
}

// NewResultsHandler creates a handler over the given processed records
func NewResultsHandler(records []models.StudentRecord, logger *logrus.Logger) *ResultsHandler {
	return &ResultsHandler{
		records: records,
		logger:  logger,
	}
}

// StudentDetail is a student record with its subject-wise breakdown
type StudentDetail struct {
	models.StudentRecord
	Subjects []models.SubjectPerformance `json:"subjects"`
}

// Health returns server health status
// GET /api/health
func (h *ResultsHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"students": len(h.records),
	})
}

// Subjects returns the curriculum
// GET /api/subjects
func (h *ResultsHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subjects":     curriculum.Subjects(),
		"totalCredits": curriculum.TotalCredits(),
	})
}

// Grades returns the grade bands
// GET /api/grades
func (h *ResultsHandler) Grades(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bands":     curriculum.GradeBands(),
		"passPoint": curriculum.PassPoint,
	})
}

// Students returns the class summary and every record in input order
// GET /api/students
func (h *ResultsHandler) Students(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary":  processor.Summary(h.records),
		"students": h.records,
	})
}

// Student returns one student by roll number. The roll number is the rest
// of the path and may contain slashes.
// GET /api/students/{rollNo}
func (h *ResultsHandler) Student(w http.ResponseWriter, r *http.Request) {
	rollNo := mux.Vars(r)["rollNo"]

	record, ok := processor.FindByRollNo(h.records, rollNo)
	if !ok {
		respondError(w, http.StatusNotFound, "student not found: "+rollNo)
		return
	}
	respondJSON(w, http.StatusOK, detail(record))
}

// Search returns the first student with an exactly matching name
// GET /api/search?name=
func (h *ResultsHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"names": processor.Names(h.records),
		})
		return
	}

	record, ok := processor.FindByName(h.records, name)
	if !ok {
		respondError(w, http.StatusNotFound, "student not found: "+name)
		return
	}
	respondJSON(w, http.StatusOK, detail(record))
}

// Analytics returns fail counts per subject
// GET /api/analytics
func (h *ResultsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary":   processor.Summary(h.records),
		"failCount": processor.ClassAnalytics(h.records),
	})
}

// Leaderboard returns the overall leaderboard
// GET /api/leaderboard?top=N
func (h *ResultsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := processor.OverallLeaderboard(h.records)
	if top > 0 && top < len(entries) {
		entries = entries[:top]
	}
	respondJSON(w, http.StatusOK, entries)
}

// SubjectLeaderboard returns the leaderboard for one subject
// GET /api/leaderboard/{code}?top=N
func (h *ResultsHandler) SubjectLeaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	code, err := strconv.Atoi(mux.Vars(r)["code"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid subject code")
		return
	}

	entries, err := processor.SubjectLeaderboard(h.records, models.SubjectCode(code))
	if errors.Is(err, processor.ErrUnknownSubject) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to build subject leaderboard: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if top > 0 && top < len(entries) {
		entries = entries[:top]
	}
	respondJSON(w, http.StatusOK, entries)
}

func parseTop(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	top, err := strconv.Atoi(raw)
	if err != nil || top < 0 {
		return 0, errors.New("top must be a non-negative integer")
	}
	return top, nil
}

func detail(record models.StudentRecord) StudentDetail {
	return StudentDetail{
		StudentRecord: record,
		Subjects:      processor.SubjectBreakdown(record),
	}
}
