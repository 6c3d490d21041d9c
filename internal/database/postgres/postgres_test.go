//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/kozaktomas/face-verifier/internal/database/storetest"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*config.DatabaseConfig, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	return cfg, func() { container.Terminate(ctx) }
}

func TestCandidateStore(t *testing.T) {
	cfg, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	storetest.Run(t, func(t *testing.T) database.CandidateStore {
		store, err := Open(ctx, cfg)
		if err != nil {
			t.Fatalf("Failed to open store: %v", err)
		}
		if _, err := store.DB().ExecContext(ctx, "TRUNCATE candidates RESTART IDENTITY"); err != nil {
			t.Fatalf("Failed to truncate candidates: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestMigrationsApplied(t *testing.T) {
	cfg, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	store, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	versions, err := store.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(versions) != 1 || versions[0] != "001_candidates.sql" {
		t.Errorf("unexpected migrations %v", versions)
	}

	// Re-opening must not re-apply anything.
	again, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	again.Close()
}
