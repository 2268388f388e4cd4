package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/mca-result-processor/internal/connector"
	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/internal/processor"
	"github.com/vitebski/mca-result-processor/internal/schema"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

func newMockStore(t *testing.T) (*ResultStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests

	dc := connector.NewDatabaseConnector("localhost", "user", "password", "results", "3306", logger)
	dc.DB = db
	return NewResultStore(dc, logger), mock
}

const absenceNote = "Absent - medical certificate submitted"

func sampleCohort() []models.RawStudent {
	var raw []models.RawStudent
	for _, s := range []struct{ roll, name, mark string }{
		{"1001", "Asha", "91"},
		{"1002", "Ravi", "AB"},
	} {
		cells := make(map[models.SubjectCode]string)
		for _, code := range curriculum.Codes() {
			cells[code] = s.mark
		}
		raw = append(raw, models.RawStudent{RollNo: s.roll, Name: s.name, Cells: cells})
	}
	raw[1].Cells[109] = absenceNote
	return raw
}

// expectSchema expects the CREATE statements, the transaction start and the
// DELETE statements that precede every snapshot write
func expectSchema(t *testing.T, mock sqlmock.Sqlmock) []schema.Table {
	t.Helper()

	created, err := schema.CreationOrder(schema.ResultsTables)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	dropped, err := schema.DropOrder(schema.ResultsTables)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, table := range created {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table.Name).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectBegin()
	for _, table := range dropped {
		mock.ExpectExec("DELETE FROM " + table.Name).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	return created
}

func TestSaveCohort(t *testing.T) {
	rs, mock := newMockStore(t)
	raw := sampleCohort()
	records := processor.Process(raw)

	created := expectSchema(t, mock)

	rowCounts := map[string]int{
		"subjects": len(curriculum.Codes()),
		"students": len(raw),
		"results":  len(raw),
	}
	for _, table := range created {
		prep := mock.ExpectPrepare("INSERT INTO " + table.Name)
		if table.Name == "marks" {
			// Raw text is stored as read, however long.
			for i, r := range records {
				for _, code := range curriculum.Codes() {
					prep.ExpectExec().
						WithArgs(r.RollNo, int(code), raw[i].Cells[code], r.Marks[code], string(r.Grades[code]), r.GradePoints[code]).
						WillReturnResult(sqlmock.NewResult(0, 1))
				}
			}
			continue
		}
		for i := 0; i < rowCounts[table.Name]; i++ {
			prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}
	mock.ExpectCommit()

	if err := rs.SaveCohort(context.Background(), raw, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestSaveCohortRollsBackOnInsertFailure(t *testing.T) {
	rs, mock := newMockStore(t)
	raw := sampleCohort()
	records := processor.Process(raw)

	created := expectSchema(t, mock)

	for _, table := range created {
		prep := mock.ExpectPrepare("INSERT INTO " + table.Name)
		if table.Name == "students" {
			prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
			prep.ExpectExec().WillReturnError(errors.New("Data too long for column 'name'"))
			break
		}
		for range curriculum.Codes() {
			prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}
	// The DELETEs above share the transaction, so the old snapshot survives.
	mock.ExpectRollback()

	err := rs.SaveCohort(context.Background(), raw, records)
	if err == nil {
		t.Fatal("Expected the insert error to be returned")
	}
	if !strings.Contains(err.Error(), "students") {
		t.Errorf("Expected the failing table to be named, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestSaveCohortDuplicateRollNo(t *testing.T) {
	rs, mock := newMockStore(t)
	raw := sampleCohort()
	raw[1].RollNo = raw[0].RollNo

	err := rs.SaveCohort(context.Background(), raw, processor.Process(raw))
	if !errors.Is(err, ErrDuplicateRollNo) {
		t.Fatalf("Expected ErrDuplicateRollNo, got %v", err)
	}
	if !strings.Contains(err.Error(), "1001") {
		t.Errorf("Expected the duplicate roll number in the error, got %v", err)
	}
	// Nothing may touch the database before the cohort is known to fit.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls: %v", err)
	}
}

func TestSaveCohortLengthMismatch(t *testing.T) {
	rs, _ := newMockStore(t)
	raw := sampleCohort()

	if err := rs.SaveCohort(context.Background(), raw, processor.Process(raw[:1])); err == nil {
		t.Error("Expected an error when raw rows and records differ")
	}
}

func TestInsertBatches(t *testing.T) {
	rs, mock := newMockStore(t)
	rs.BatchSize = 2

	mock.ExpectBegin()
	for _, size := range []int{2, 1} {
		prep := mock.ExpectPrepare(`INSERT INTO students \(roll_no, name, source_order\) VALUES \(\?, \?, \?\)`)
		for i := 0; i < size; i++ {
			prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}
	mock.ExpectCommit()

	ctx := context.Background()
	rows := [][]interface{}{{"1", "A", 0}, {"2", "B", 1}, {"3", "C", 2}}
	err := rs.DB.WithTransaction(ctx, func(tx *sql.Tx) error {
		return rs.insert(ctx, tx, "students", []string{"roll_no", "name", "source_order"}, rows)
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestLoadRaw(t *testing.T) {
	rs, mock := newMockStore(t)

	mock.ExpectQuery("SELECT roll_no, name FROM students").WillReturnRows(
		sqlmock.NewRows([]string{"roll_no", "name"}).
			AddRow("1002", "Ravi").
			AddRow("1001", "Asha"),
	)
	mock.ExpectQuery("SELECT roll_no, subject_code, raw_value FROM marks").WillReturnRows(
		sqlmock.NewRows([]string{"roll_no", "subject_code", "raw_value"}).
			AddRow("1001", int64(101), "91").
			AddRow("1002", int64(101), "AB").
			AddRow("1002", int64(109), []byte(absenceNote)).
			AddRow("9999", int64(101), "50").
			AddRow("1001", int64(103), nil),
	)

	students, err := rs.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("Expected 2 students, got %d", len(students))
	}
	if students[0].RollNo != "1002" || students[1].RollNo != "1001" {
		t.Errorf("Expected stored order to be kept, got %s, %s", students[0].RollNo, students[1].RollNo)
	}
	if students[1].Cells[101] != "91" {
		t.Errorf("Expected mark 91 for 1001, got %q", students[1].Cells[101])
	}
	if students[0].Cells[101] != "AB" {
		t.Errorf("Expected raw absence marker to round-trip, got %q", students[0].Cells[101])
	}
	if students[0].Cells[109] != absenceNote {
		t.Errorf("Expected long raw text to round-trip, got %q", students[0].Cells[109])
	}
	if _, ok := students[1].Cells[103]; ok {
		t.Error("Expected NULL raw value to be left blank")
	}
}

func TestVerifySnapshot(t *testing.T) {
	rs, mock := newMockStore(t)

	counts := map[string]int64{"marks": 22, "results": 2, "students": 3, "subjects": 11}
	for _, table := range schema.ResultsTables {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS count FROM " + table.Name).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(counts[table.Name]))
	}

	ok, mismatched, err := rs.VerifySnapshot(context.Background(), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected verification to fail")
	}
	if len(mismatched) != 1 || mismatched["students"] != 3 {
		t.Errorf("Expected only students to mismatch, got %v", mismatched)
	}
}
