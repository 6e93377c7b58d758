// Package testutil provides test helpers for container-backed storage and
// Telnet battle sessions.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "skirmish"
	pgPassword = "skirmish"
	pgDatabase = "skirmish_test"
)

// StartPostgres runs a disposable PostgreSQL container for the test and
// returns settings that reach it. The test is skipped when no container
// provider is available.
//
// Postcondition: The container is terminated when the test ends.
func StartPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	start := time.Now()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("resolving container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("resolving container port: %v", err)
	}
	t.Logf("postgres container ready [%s]", time.Since(start))

	return config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgPassword,
		Name:            pgDatabase,
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
}

// Migrate brings the schema of cfg's database to the latest migration, the
// same way cmd/migrate does.
func Migrate(t *testing.T, cfg config.DatabaseConfig) {
	t.Helper()
	m, err := migrate.New("file://"+MigrationsDir(t), cfg.DSN())
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("applying migrations: %v", err)
	}
}

// MigrationsDir returns the absolute path of the repository's migrations
// directory.
func MigrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolving testutil source path")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// NewPool starts a migrated container and returns a pool connected to it.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := StartPostgres(t)
	Migrate(t, cfg)
	pool, err := postgres.NewPool(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool.DB()
}
