// Package mariadb provides the MariaDB/MySQL candidate store.
package mariadb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/database/sqlstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// URLPrefix marks a DATABASE_URL as a go-sql-driver DSN.
const URLPrefix = "mysql://"

// erDupEntry is the server error number for a duplicate key.
const erDupEntry = 1062

// Dialect is the MySQL flavour of the candidate store.
var Dialect = sqlstore.Dialect{
	Name: "mariadb",
	MigrationsTableDDL: `CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) NOT NULL PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erDupEntry
}

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// IsMySQLURL reports whether url should be opened by this backend.
func IsMySQLURL(u string) bool {
	return strings.HasPrefix(u, URLPrefix)
}

// DSN strips the mysql:// prefix and parses the remainder as a driver DSN.
func DSN(u string) (string, error) {
	raw := strings.TrimPrefix(u, URLPrefix)
	if raw == "" {
		return "", errors.New("MariaDB DSN is required")
	}
	parsed, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("invalid MariaDB DSN: %w", err)
	}
	return parsed.FormatDSN(), nil
}

// NewStore creates a connection pool without touching the schema.
func NewStore(ctx context.Context, cfg *config.DatabaseConfig) (*sqlstore.Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	dsn, err := DSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return sqlstore.New(db, Dialect), nil
}

// Open creates the pool and applies pending migrations.
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
