// Package main applies the survivor store migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	source := flag.String("source", "migrations", "directory holding the migration files")
	flag.Parse()

	// Only the logging and database sections matter, so the battle
	// section is not validated.
	v := config.NewViper()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("parsing config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	if !cfg.Database.Enabled {
		logger.Warn("database.enabled is false; migrating anyway", zap.String("config", *configPath))
	}

	m, err := migrate.New("file://"+*source, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.Error(err))
	}
	defer m.Close()

	err = run(m, *direction, *steps)
	changed := !errors.Is(err, migrate.ErrNoChange)
	if err != nil && changed {
		logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}
	version, dirty, _ := m.Version()
	logger.Info("migrations applied",
		zap.String("direction", *direction),
		zap.Bool("changed", changed),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// run moves the schema steps migrations in direction; steps 0 goes all the way.
func run(m *migrate.Migrate, direction string, steps int) error {
	switch {
	case direction == "up" && steps > 0:
		return m.Steps(steps)
	case direction == "up":
		return m.Up()
	case direction == "down" && steps > 0:
		return m.Steps(-steps)
	case direction == "down":
		return m.Down()
	}
	return fmt.Errorf("invalid direction %q: must be up or down", direction)
}
