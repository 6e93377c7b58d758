// Package postgres persists party survivor lists in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// applicationName tags this process's sessions in pg_stat_activity.
const applicationName = "skirmish"

// Pool is the connection pool the repositories share.
type Pool struct {
	db *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies it
// answers.
//
// Precondition: cfg must pass config validation with Enabled set.
// Postcondition: Returns a pinged Pool or a non-nil error; no connections
// are left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName

	db, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s@%s: %w", cfg.Name, cfg.Host, err)
	}
	return &Pool{db: db}, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}

// DB returns the underlying pgxpool.Pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}

// Close releases every connection. The Pool is unusable afterwards.
func (p *Pool) Close() {
	p.db.Close()
}
