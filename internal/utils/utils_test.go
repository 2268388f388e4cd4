package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestSetupLogging(t *testing.T) {
	t.Setenv(LogLevelEnv, "")

	logger := SetupLogging("")
	if logger == nil {
		t.Fatal("Expected logger to be created, got nil")
	}
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected default log level to be info, got %s", logger.Level)
	}

	for input, expected := range map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"invalid": logrus.InfoLevel,
	} {
		logger = SetupLogging(input)
		if logger.Level != expected {
			t.Errorf("SetupLogging(%q): expected level %s, got %s", input, expected, logger.Level)
		}
	}

	t.Setenv(LogLevelEnv, "warn")
	logger = SetupLogging("")
	if logger.Level != logrus.WarnLevel {
		t.Errorf("Expected log level from environment to be warn, got %s", logger.Level)
	}
}

func TestLoadEnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")

	if LoadEnvironmentVariables(envFile, quietLogger()) {
		t.Error("Expected false when the .env file does not exist")
	}

	t.Setenv("RESULTS_TEST_VALUE", "")
	if err := os.WriteFile(envFile, []byte("RESULTS_TEST_VALUE=loaded\n"), 0o644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	os.Unsetenv("RESULTS_TEST_VALUE")

	if !LoadEnvironmentVariables(envFile, quietLogger()) {
		t.Error("Expected true when the .env file exists")
	}
	if os.Getenv("RESULTS_TEST_VALUE") != "loaded" {
		t.Errorf("Expected RESULTS_TEST_VALUE to be loaded, got %q", os.Getenv("RESULTS_TEST_VALUE"))
	}
}

func TestLogMySQLEnvironment(t *testing.T) {
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PASSWORD", "hunter2")

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	LogMySQLEnvironment(logger)
	out := buf.String()

	if !strings.Contains(out, "MYSQL_HOST=db.internal") {
		t.Errorf("Expected MYSQL_HOST to be logged, got %q", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Error("Expected MYSQL_PASSWORD to be masked")
	}

	buf.Reset()
	logger.SetLevel(logrus.InfoLevel)
	LogMySQLEnvironment(logger)
	if buf.Len() != 0 {
		t.Errorf("Expected nothing logged above debug level, got %q", buf.String())
	}
}

func TestValidateConnectionParams(t *testing.T) {
	logger := quietLogger()

	if !ValidateConnectionParams("localhost", "user", "password", "database", "3306", logger) {
		t.Error("Expected validation to pass with valid parameters")
	}
	if ValidateConnectionParams("", "user", "password", "database", "3306", logger) {
		t.Error("Expected validation to fail with missing host")
	}
	if ValidateConnectionParams("localhost", "", "password", "database", "3306", logger) {
		t.Error("Expected validation to fail with missing user")
	}
	if ValidateConnectionParams("localhost", "user", "password", "", "3306", logger) {
		t.Error("Expected validation to fail with missing database")
	}
	if ValidateConnectionParams("localhost", "user", "password", "database", "not-a-port", logger) {
		t.Error("Expected validation to fail with invalid port")
	}
	// Empty password is allowed
	if !ValidateConnectionParams("localhost", "user", "", "database", "3306", logger) {
		t.Error("Expected validation to pass with empty password")
	}
}
