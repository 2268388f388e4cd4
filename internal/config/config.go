package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every flag-derived environment variable, so
// --input can also be supplied as RESULTS_INPUT.
const EnvPrefix = "RESULTS"

// MySQLConfig holds database connection parameters
type MySQLConfig struct {
	Host     string
	User     string
	Password string
	Database string
	Port     string
}

// Config is the resolved configuration for a single command run
type Config struct {
	Input string
	Sheet string
	Out   string
	Addr  string
	Top   int
	MySQL MySQLConfig
}

// mysqlKeys maps viper keys to the connection flags and the conventional
// MYSQL_* environment names.
var mysqlKeys = []struct {
	key, flag, env string
}{
	{"mysql.host", "host", "MYSQL_HOST"},
	{"mysql.user", "user", "MYSQL_USER"},
	{"mysql.password", "password", "MYSQL_PASSWORD"},
	{"mysql.database", "database", "MYSQL_DATABASE"},
	{"mysql.port", "port", "MYSQL_PORT"},
}

// Load resolves configuration from, in decreasing precedence, changed flags,
// environment variables, the optional config file and built-in defaults.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("top", 0)
	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.port", "3306")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for _, m := range mysqlKeys {
		if err := v.BindEnv(m.key, m.env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", m.env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
		for _, m := range mysqlKeys {
			if f := flags.Lookup(m.flag); f != nil {
				if err := v.BindPFlag(m.key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", m.flag, err)
				}
			}
		}
	}

	return &Config{
		Input: v.GetString("input"),
		Sheet: v.GetString("sheet"),
		Out:   v.GetString("out"),
		Addr:  v.GetString("addr"),
		Top:   v.GetInt("top"),
		MySQL: MySQLConfig{
			Host:     v.GetString("mysql.host"),
			User:     v.GetString("mysql.user"),
			Password: v.GetString("mysql.password"),
			Database: v.GetString("mysql.database"),
			Port:     v.GetString("mysql.port"),
		},
	}, nil
}
