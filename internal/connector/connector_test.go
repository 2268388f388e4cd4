package connector

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
)

// Helper function to create a quiet logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func newMockConnector(t *testing.T) (*DatabaseConnector, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dc := NewDatabaseConnector("localhost", "user", "password", "results", "3306", createTestLogger())
	dc.DB = db
	return dc, mock
}

func TestNewDatabaseConnector(t *testing.T) {
	t.Setenv("MYSQL_HOST", "test-host")
	t.Setenv("MYSQL_USER", "test-user")
	t.Setenv("MYSQL_PASSWORD", "test-password")
	t.Setenv("MYSQL_DATABASE", "test-database")
	t.Setenv("MYSQL_PORT", "3307")

	logger := createTestLogger()

	db := NewDatabaseConnector("", "", "", "", "", logger)
	if db.Host != "test-host" {
		t.Errorf("Expected host to be 'test-host', got '%s'", db.Host)
	}
	if db.User != "test-user" {
		t.Errorf("Expected user to be 'test-user', got '%s'", db.User)
	}
	if db.Password != "test-password" {
		t.Errorf("Expected password to be 'test-password', got '%s'", db.Password)
	}
	if db.Database != "test-database" {
		t.Errorf("Expected database to be 'test-database', got '%s'", db.Database)
	}
	if db.Port != "3307" {
		t.Errorf("Expected port to be '3307', got '%s'", db.Port)
	}

	db = NewDatabaseConnector("explicit-host", "explicit-user", "explicit-password", "explicit-database", "3308", logger)
	if db.Host != "explicit-host" || db.Port != "3308" || db.Database != "explicit-database" {
		t.Errorf("Expected explicit parameters to be used, got %+v", db)
	}
}

func TestDSN(t *testing.T) {
	dc := NewDatabaseConnector("db.local", "grader", "s3cret", "results", "3310", createTestLogger())
	dsn := dc.DSN()

	if !strings.HasPrefix(dsn, "grader:s3cret@tcp(db.local:3310)/results?") {
		t.Errorf("Unexpected DSN: %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("Expected DSN to enable parseTime, got %s", dsn)
	}
}

func TestConnectRequiresDatabase(t *testing.T) {
	dc := &DatabaseConnector{Host: "localhost", Port: "3306", Logger: createTestLogger()}
	if err := dc.Connect(context.Background()); err == nil {
		t.Error("Expected an error when no database name is set")
	}
}

func TestExecuteQuery(t *testing.T) {
	dc, mock := newMockConnector(t)

	rows := sqlmock.NewRows([]string{"roll_no", "name", "marks"}).
		AddRow([]byte("1001"), "Asha", 91.5).
		AddRow([]byte("1002"), nil, 40.0)
	mock.ExpectQuery("SELECT roll_no, name, marks FROM marks").WithArgs(101).WillReturnRows(rows)

	result, err := dc.ExecuteQuery(context.Background(), "SELECT roll_no, name, marks FROM marks WHERE subject_code = ?", 101)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(result))
	}
	if result[0]["roll_no"] != "1001" {
		t.Errorf("Expected []byte to be converted to string, got %#v", result[0]["roll_no"])
	}
	if result[1]["name"] != nil {
		t.Errorf("Expected NULL to stay nil, got %#v", result[1]["name"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestExecuteStatement(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectExec("DELETE FROM results").WillReturnResult(sqlmock.NewResult(0, 4))

	affected, err := dc.ExecuteStatement(context.Background(), "DELETE FROM results")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if affected != 4 {
		t.Errorf("Expected 4 affected rows, got %d", affected)
	}
}

func TestExecuteMany(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO subjects")
	prep.ExpectExec().WithArgs(101, 4, "Discrete Structures").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(103, 3, "Computer Networks").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	affected, err := dc.ExecuteMany(context.Background(), "INSERT INTO subjects (code, credit, name) VALUES (?, ?, ?)", [][]interface{}{
		{101, 4, "Discrete Structures"},
		{103, 3, "Computer Networks"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 affected rows, got %d", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestExecuteManyRollsBack(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO subjects")
	prep.ExpectExec().WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	_, err := dc.ExecuteMany(context.Background(), "INSERT INTO subjects (code) VALUES (?)", [][]interface{}{{101}})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestWithTransactionCommits(t *testing.T) {
	dc, mock := newMockConnector(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 2))
	prep := mock.ExpectPrepare("INSERT INTO students")
	prep.ExpectExec().WithArgs("1001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := dc.WithTransaction(ctx, func(tx *sql.Tx) error {
		deleted, err := dc.ExecuteStatementTx(ctx, tx, "DELETE FROM students")
		if err != nil {
			return err
		}
		if deleted != 2 {
			t.Errorf("Expected 2 deleted rows, got %d", deleted)
		}
		_, err = dc.ExecuteManyTx(ctx, tx, "INSERT INTO students (roll_no) VALUES (?)", [][]interface{}{{"1001"}})
		return err
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestWithTransactionRollsBackEarlierStatements(t *testing.T) {
	dc, mock := newMockConnector(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 2))
	prep := mock.ExpectPrepare("INSERT INTO students")
	prep.ExpectExec().WithArgs("1001").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("1001").WillReturnError(errors.New("Duplicate entry '1001' for key 'PRIMARY'"))
	mock.ExpectRollback()

	err := dc.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := dc.ExecuteStatementTx(ctx, tx, "DELETE FROM students"); err != nil {
			return err
		}
		_, err := dc.ExecuteManyTx(ctx, tx, "INSERT INTO students (roll_no) VALUES (?)", [][]interface{}{{"1001"}, {"1001"}})
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "Duplicate entry") {
		t.Fatalf("Expected the insert error to be returned, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
