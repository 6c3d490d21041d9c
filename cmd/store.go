package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/database/libsql"
	"github.com/kozaktomas/face-verifier/internal/database/mariadb"
	"github.com/kozaktomas/face-verifier/internal/database/postgres"
	"github.com/kozaktomas/face-verifier/internal/database/sqlstore"
	"github.com/kozaktomas/face-verifier/internal/oracle"
	"github.com/kozaktomas/face-verifier/internal/oracle/dlib"
)

// storeBackend knows how to connect to one kind of DATABASE_URL.
type storeBackend struct {
	name       string
	newStore   func(context.Context, *config.DatabaseConfig) (*sqlstore.Store, error)
	migrations func() fs.FS
}

// backendFor picks the store implementation from the URL scheme.
func backendFor(url string) (*storeBackend, error) {
	switch {
	case postgres.IsPostgresURL(url):
		return &storeBackend{name: "postgres", newStore: postgres.NewStore, migrations: postgres.Migrations}, nil
	case mariadb.IsMySQLURL(url):
		return &storeBackend{name: "mariadb", newStore: mariadb.NewStore, migrations: mariadb.Migrations}, nil
	case libsql.IsLibSQLURL(url):
		return &storeBackend{name: "libsql", newStore: libsql.NewStore, migrations: libsql.Migrations}, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL %q: expected file:, libsql://, http(s)://, postgres:// or mysql://", url)
	}
}

// openStore connects to the configured database and applies pending migrations.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (*sqlstore.Store, error) {
	backend, err := backendFor(cfg.URL)
	if err != nil {
		return nil, err
	}
	store, err := backend.newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", backend.name, err)
	}
	if _, err := store.Migrate(ctx, backend.migrations()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// newOracle builds the configured embedding oracle. The returned func releases it.
func newOracle(cfg *config.OracleConfig) (oracle.Oracle, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "http":
		return oracle.NewHTTPClient(cfg.URL), func() {}, nil
	case "dlib":
		o, err := dlib.New(cfg.ModelsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load dlib models from %s: %w", cfg.ModelsDir, err)
		}
		return o, o.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ORACLE_BACKEND %q: expected http or dlib", cfg.Backend)
	}
}
