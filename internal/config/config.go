package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Database DatabaseConfig
	Oracle   OracleConfig
	Web      WebConfig
	Log      LogConfig
	Metrics  MetricsConfig
	APIURL   string // base URL of a running server, used by CLI commands in remote mode
}

type DatabaseConfig struct {
	URL          string // file:candidates.db, postgres://..., mysql://<dsn>
	AuthToken    string // auth token for remote libSQL databases
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type OracleConfig struct {
	Backend   string // http or dlib
	URL       string // defaults to http://localhost:8000
	ModelsDir string // dlib model files, defaults to ./models
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	File   string // optional path, rotated by size
}

type MetricsConfig struct {
	Enabled bool
}

const (
	defaultDatabaseURL = "file:candidates.db"
	defaultOracleURL   = "http://localhost:8000"
	defaultAPIURL      = "http://localhost:8080"
)

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envBool accepts the usual strconv spellings and falls back to the default otherwise.
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          envString("DATABASE_URL", defaultDatabaseURL),
			AuthToken:    os.Getenv("DATABASE_AUTH_TOKEN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Oracle: OracleConfig{
			Backend:   strings.ToLower(envString("ORACLE_BACKEND", "http")),
			URL:       envString("ORACLE_URL", defaultOracleURL),
			ModelsDir: envString("ORACLE_MODELS_DIR", "models"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: splitList(os.Getenv("WEB_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envString("LOG_LEVEL", "info")),
			Format: strings.ToLower(envString("LOG_FORMAT", "console")),
			File:   os.Getenv("LOG_FILE"),
		},
		Metrics: MetricsConfig{
			Enabled: envBool("METRICS_ENABLED", true),
		},
		APIURL: strings.TrimSuffix(envString("API_URL", defaultAPIURL), "/"),
	}
}
