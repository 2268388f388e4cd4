package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/mca-result-processor/internal/connector"
	"github.com/vitebski/mca-result-processor/internal/curriculum"
	"github.com/vitebski/mca-result-processor/internal/schema"
	"github.com/vitebski/mca-result-processor/pkg/models"
)

// DefaultBatchSize is the number of rows sent per prepared batch
const DefaultBatchSize = 100

// ResultStore writes processed cohorts to MySQL and reads raw marks back
type ResultStore struct {
	DB        *connector.DatabaseConnector
	Tables    []schema.Table
	BatchSize int
	Logger    *logrus.Logger
}

// NewResultStore creates a new result store over the results schema
func NewResultStore(db *connector.DatabaseConnector, logger *logrus.Logger) *ResultStore {
	return &ResultStore{
		DB:        db,
		Tables:    schema.ResultsTables,
		BatchSize: DefaultBatchSize,
		Logger:    logger,
	}
}

// EnsureSchema creates any missing tables, referenced tables first
func (rs *ResultStore) EnsureSchema(ctx context.Context) error {
	ordered, err := schema.CreationOrder(rs.Tables)
	if err != nil {
		return err
	}

	for _, table := range ordered {
		if _, err := rs.DB.ExecuteStatement(ctx, table.DDL); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.Name, err)
		}
		rs.Logger.Debugf("Ensured table %s", table.Name)
	}
	return nil
}

// ErrDuplicateRollNo is returned when a cohort repeats a roll number, which
// the students table cannot hold
var ErrDuplicateRollNo = errors.New("duplicate roll number")

// clear removes the previous snapshot, dependent tables first
func (rs *ResultStore) clear(ctx context.Context, tx *sql.Tx) error {
	ordered, err := schema.DropOrder(rs.Tables)
	if err != nil {
		return err
	}

	for _, table := range ordered {
		affected, err := rs.DB.ExecuteStatementTx(ctx, tx, "DELETE FROM "+table.Name)
		if err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table.Name, err)
		}
		rs.Logger.Debugf("Cleared %d rows from %s", affected, table.Name)
	}
	return nil
}

// SaveCohort replaces the stored snapshot with a processed cohort. raw and
// records must be the input and output of one processor run. The old
// snapshot is cleared and the new one written in a single transaction, so a
// failed save leaves the previous snapshot in place.
func (rs *ResultStore) SaveCohort(ctx context.Context, raw []models.RawStudent, records []models.StudentRecord) error {
	if len(raw) != len(records) {
		return fmt.Errorf("raw rows (%d) and processed records (%d) differ in length", len(raw), len(records))
	}
	if err := checkRollNos(records); err != nil {
		return err
	}

	// DDL commits implicitly in MySQL, so tables are created before the transaction.
	if err := rs.EnsureSchema(ctx); err != nil {
		return err
	}

	ordered, err := schema.CreationOrder(rs.Tables)
	if err != nil {
		return err
	}

	err = rs.DB.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := rs.clear(ctx, tx); err != nil {
			return err
		}
		for _, table := range ordered {
			columns, rows := rs.tableRows(table.Name, raw, records)
			if columns == nil {
				rs.Logger.Warningf("No writer for table %s, skipping", table.Name)
				continue
			}
			if err := rs.insert(ctx, tx, table.Name, columns, rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		rs.Logger.Errorf("Storing cohort failed, previous snapshot kept: %v", err)
		return err
	}

	rs.Logger.Infof("Stored %d students in %s", len(records), rs.DB.Database)
	return nil
}

func checkRollNos(records []models.StudentRecord) error {
	seen := make(map[string]bool, len(records))
	var dups []string
	for _, r := range records {
		if seen[r.RollNo] {
			dups = append(dups, r.RollNo)
			continue
		}
		seen[r.RollNo] = true
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRollNo, strings.Join(dups, ", "))
	}
	return nil
}

// tableRows builds the column list and parameter rows for one table
func (rs *ResultStore) tableRows(table string, raw []models.RawStudent, records []models.StudentRecord) ([]string, [][]interface{}) {
	var rows [][]interface{}

	switch table {
	case "subjects":
		for _, s := range curriculum.Subjects() {
			rows = append(rows, []interface{}{int(s.Code), s.Credit, s.Name})
		}
		return []string{"code", "credit", "name"}, rows

	case "students":
		for i, r := range records {
			rows = append(rows, []interface{}{r.RollNo, r.Name, i})
		}
		return []string{"roll_no", "name", "source_order"}, rows

	case "marks":
		for i, r := range records {
			for _, code := range curriculum.Codes() {
				rows = append(rows, []interface{}{
					r.RollNo,
					int(code),
					raw[i].Cells[code],
					r.Marks[code],
					string(r.Grades[code]),
					r.GradePoints[code],
				})
			}
		}
		return []string{"roll_no", "subject_code", "raw_value", "marks", "grade", "grade_point"}, rows

	case "results":
		for _, r := range records {
			rows = append(rows, []interface{}{r.RollNo, r.SGPA, r.CGPA, string(r.Result), r.Rank})
		}
		return []string{"roll_no", "sgpa", "cgpa", "result", "class_rank"}, rows
	}

	return nil, nil
}

// insert writes rows in batches of BatchSize on the given transaction
func (rs *ResultStore) insert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]interface{}) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		placeholders,
	)

	batchSize := rs.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := rs.DB.ExecuteManyTx(ctx, tx, insertSQL, rows[start:end]); err != nil {
			rs.Logger.Errorf("Error inserting data into table %s: %v", table, err)
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	rs.Logger.Infof("Inserted %d rows into %s", len(rows), table)
	return nil
}

// LoadRaw reads the stored marks back as raw rows in their original order
func (rs *ResultStore) LoadRaw(ctx context.Context) ([]models.RawStudent, error) {
	studentRows, err := rs.DB.ExecuteQuery(ctx, "SELECT roll_no, name FROM students ORDER BY source_order")
	if err != nil {
		return nil, fmt.Errorf("failed to read students: %w", err)
	}

	students := make([]models.RawStudent, 0, len(studentRows))
	index := make(map[string]int, len(studentRows))
	for _, row := range studentRows {
		rollNo := fmt.Sprint(row["roll_no"])
		index[rollNo] = len(students)
		students = append(students, models.RawStudent{
			RollNo: rollNo,
			Name:   fmt.Sprint(row["name"]),
			Cells:  make(map[models.SubjectCode]string, len(curriculum.Codes())),
		})
	}

	markRows, err := rs.DB.ExecuteQuery(ctx, "SELECT roll_no, subject_code, raw_value FROM marks")
	if err != nil {
		return nil, fmt.Errorf("failed to read marks: %w", err)
	}

	for _, row := range markRows {
		i, ok := index[fmt.Sprint(row["roll_no"])]
		if !ok {
			rs.Logger.Warningf("Marks found for unknown student %v", row["roll_no"])
			continue
		}
		code, err := strconv.Atoi(fmt.Sprint(row["subject_code"]))
		if err != nil {
			rs.Logger.Warningf("Skipping mark with invalid subject code %v", row["subject_code"])
			continue
		}
		if row["raw_value"] != nil {
			students[i].Cells[models.SubjectCode(code)] = fmt.Sprint(row["raw_value"])
		}
	}

	rs.Logger.Infof("Loaded %d students from %s", len(students), rs.DB.Database)
	return students, nil
}
