// Package libsql provides the file-backed candidate store (SQLite through libSQL).
// Remote libSQL servers (libsql://, https://) are supported with an auth token.
package libsql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/database/sqlstore"
	_ "github.com/tursodatabase/go-libsql"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Dialect is the SQLite flavour of the candidate store.
var Dialect = sqlstore.Dialect{
	Name:        "libsql",
	ReturningID: true,
	MigrationsTableDDL: `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	IsUniqueViolation: func(err error) bool {
		return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// IsLibSQLURL reports whether url should be opened by this backend.
func IsLibSQLURL(u string) bool {
	for _, prefix := range []string{"file:", "libsql://", "http://", "https://"} {
		if strings.HasPrefix(u, prefix) {
			return true
		}
	}
	return false
}

// withAuthToken sets the authToken query parameter on remote URLs.
func withAuthToken(dbURL, token string) (string, error) {
	if token == "" {
		return dbURL, nil
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ensureDir creates the parent directory of a file: URL's path.
func ensureDir(dbURL string) error {
	path := strings.TrimPrefix(dbURL, "file:")
	path, _, _ = strings.Cut(path, "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}

// NewStore opens the database without touching the schema.
func NewStore(ctx context.Context, cfg *config.DatabaseConfig) (*sqlstore.Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	dbURL := cfg.URL
	if strings.HasPrefix(dbURL, "file:") {
		if err := ensureDir(dbURL); err != nil {
			return nil, err
		}
	} else {
		var err error
		if dbURL, err = withAuthToken(dbURL, cfg.AuthToken); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlstore.New(db, Dialect), nil
}

// Open opens the database and applies pending migrations.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sqlstore.Store, error) {
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := store.Migrate(ctx, Migrations()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}
