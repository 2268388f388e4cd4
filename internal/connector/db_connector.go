package connector

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// DatabaseConnector handles the MySQL connection used to store marks and results
type DatabaseConnector struct {
	Host     string
	User     string
	Password string
	Database string
	Port     string
	DB       *sql.DB
	Logger   *logrus.Logger
}

// NewDatabaseConnector creates a new database connector. Empty parameters fall
// back to the MYSQL_* environment variables.
func NewDatabaseConnector(host, user, password, database, port string, logger *logrus.Logger) *DatabaseConnector {
	if host == "" {
		host = getEnvOrDefault("MYSQL_HOST", "localhost")
	}
	if user == "" {
		user = getEnvOrDefault("MYSQL_USER", "root")
	}
	if password == "" {
		password = getEnvOrDefault("MYSQL_PASSWORD", "")
	}
	if database == "" {
		database = getEnvOrDefault("MYSQL_DATABASE", "")
	}
	if port == "" {
		port = getEnvOrDefault("MYSQL_PORT", "3306")
	}

	return &DatabaseConnector{
		Host:     host,
		User:     user,
		Password: password,
		Database: database,
		Port:     port,
		Logger:   logger,
	}
}

// DSN builds the driver connection string
func (dc *DatabaseConnector) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = dc.User
	cfg.Passwd = dc.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(dc.Host, dc.Port)
	cfg.DBName = dc.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second
	return cfg.FormatDSN()
}

// Connect establishes a connection to the MySQL database
func (dc *DatabaseConnector) Connect(ctx context.Context) error {
	if dc.Database == "" {
		return fmt.Errorf("database name must be provided either as an argument or as MYSQL_DATABASE environment variable")
	}

	db, err := sql.Open("mysql", dc.DSN())
	if err != nil {
		dc.Logger.Errorf("Error connecting to MySQL database: %v", err)
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		dc.Logger.Errorf("Error pinging MySQL database: %v", err)
		db.Close()
		return err
	}

	dc.DB = db
	dc.Logger.Infof("Connected to MySQL database: %s", dc.Database)
	return nil
}

// Disconnect closes the database connection
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB != nil {
		if err := dc.DB.Close(); err != nil {
			dc.Logger.Errorf("Error closing database connection: %v", err)
		} else {
			dc.Logger.Info("MySQL connection closed")
		}
	}
}

func (dc *DatabaseConnector) ensureConnected(ctx context.Context) error {
	if dc.DB == nil {
		return dc.Connect(ctx)
	}
	return nil
}

// ExecuteQuery executes a SQL query and returns the rows as column maps.
// Text columns come back as string rather than []byte.
func (dc *DatabaseConnector) ExecuteQuery(ctx context.Context, query string, params ...interface{}) ([]map[string]interface{}, error) {
	if err := dc.ensureConnected(ctx); err != nil {
		return nil, err
	}

	rows, err := dc.DB.QueryContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		dc.Logger.Errorf("Error getting columns: %v", err)
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			dc.Logger.Errorf("Error scanning row: %v", err)
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		dc.Logger.Errorf("Error iterating rows: %v", err)
		return nil, err
	}

	return results, nil
}

// ExecuteStatement executes a SQL statement and returns the number of affected rows
func (dc *DatabaseConnector) ExecuteStatement(ctx context.Context, query string, params ...interface{}) (int64, error) {
	if err := dc.ensureConnected(ctx); err != nil {
		return 0, err
	}

	result, err := dc.DB.ExecContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		dc.Logger.Errorf("Error getting affected rows: %v", err)
		return 0, err
	}

	return affected, nil
}

// ExecuteMany executes a SQL statement once per parameter set inside one transaction
func (dc *DatabaseConnector) ExecuteMany(ctx context.Context, query string, paramsList [][]interface{}) (int64, error) {
	var totalAffected int64
	err := dc.WithTransaction(ctx, func(tx *sql.Tx) error {
		affected, err := dc.ExecuteManyTx(ctx, tx, query, paramsList)
		totalAffected = affected
		return err
	})
	if err != nil {
		return 0, err
	}
	return totalAffected, nil
}

// WithTransaction runs fn inside a transaction. The transaction is committed
// if fn returns nil and rolled back otherwise.
func (dc *DatabaseConnector) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := dc.ensureConnected(ctx); err != nil {
		return err
	}

	tx, err := dc.DB.BeginTx(ctx, nil)
	if err != nil {
		dc.Logger.Errorf("Error starting transaction: %v", err)
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			dc.Logger.Errorf("Error rolling back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		dc.Logger.Errorf("Error committing transaction: %v", err)
		return err
	}
	return nil
}

// ExecuteStatementTx executes a SQL statement on an open transaction
func (dc *DatabaseConnector) ExecuteStatementTx(ctx context.Context, tx *sql.Tx, query string, params ...interface{}) (int64, error) {
	result, err := tx.ExecContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		dc.Logger.Errorf("Error getting affected rows: %v", err)
		return 0, err
	}
	return affected, nil
}

// ExecuteManyTx executes a prepared SQL statement once per parameter set on an
// open transaction. The caller commits or rolls back.
func (dc *DatabaseConnector) ExecuteManyTx(ctx context.Context, tx *sql.Tx, query string, paramsList [][]interface{}) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		dc.Logger.Errorf("Error preparing statement: %v", err)
		return 0, err
	}
	defer stmt.Close()

	var totalAffected int64
	for _, params := range paramsList {
		result, err := stmt.ExecContext(ctx, params...)
		if err != nil {
			dc.Logger.Errorf("Error executing batch statement: %v", err)
			return 0, err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			dc.Logger.Errorf("Error getting affected rows: %v", err)
			return 0, err
		}
		totalAffected += affected
	}
	return totalAffected, nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
