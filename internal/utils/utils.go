package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LogLevelEnv names the environment variable consulted when no level flag is given
const LogLevelEnv = "RESULTS_LOG_LEVEL"

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv(LogLevelEnv)
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	// Reports go to stdout; keep logs on stderr so they can be piped apart.
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from a .env file if one
// exists. It reports whether a file was loaded.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		} else {
			logger.Debugf("No %s file found, using existing environment variables", envFile)
		}
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}

	logger.Infof("Loaded environment variables from %s", envFile)
	return true
}

// LogMySQLEnvironment logs the MYSQL_* variables at debug level with the password masked
func LogMySQLEnvironment(logger *logrus.Logger) {
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "MYSQL_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == "MYSQL_PASSWORD" {
			logger.Debugf("%s=********", parts[0])
		} else {
			logger.Debugf("%s=%s", parts[0], parts[1])
		}
	}
}

// ValidateConnectionParams validates database connection parameters
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) bool {
	if host == "" {
		logger.Error("Database host is required")
		return false
	}

	if user == "" {
		logger.Error("Database user is required")
		return false
	}

	if password == "" { // Empty password is allowed
		logger.Warning("Database password is empty")
	}

	if database == "" {
		logger.Error("Database name is required")
		return false
	}

	if _, err := strconv.Atoi(port); err != nil {
		logger.Errorf("Invalid port number: %s", port)
		return false
	}

	return true
}
