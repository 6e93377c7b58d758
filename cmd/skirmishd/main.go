// Package main serves battles over Telnet, one battle per connection.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/console"
	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/server"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	reportEvery := flag.Duration("report", time.Minute, "interval between active battle reports")
	healthEvery := flag.Duration("health", 30*time.Second, "interval between database health checks")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	content, err := console.LoadContent(cfg.Battle.ContentDir, cfg.Battle.Party)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	if _, ok := content.Battles[cfg.Battle.Battle]; !ok {
		logger.Fatal("configured battle not found", zap.String("battle", cfg.Battle.Battle))
	}

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)
	sessions := battle.NewManager()

	var store console.SurvivorStore
	if cfg.Database.Enabled {
		pool := connect(ctx, cfg.Database, logger)
		defer pool.Close()
		store = postgres.NewSurvivorRepository(pool.DB())
		lifecycle.Add("postgres", server.NewHealthMonitor("postgres", *healthEvery, func(ctx context.Context) error {
			return pool.Health(ctx, 5*time.Second)
		}, logger))
	}

	runner := console.NewRunner(cfg.Battle, content, store, sessions, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, console.NewBattleHandler(runner, logger), logger)
	lifecycle.Add("battles", server.NewBattleReporter(sessions, *reportEvery, logger))
	lifecycle.Add("telnet", server.TelnetService(acceptor))

	logger.Info("server initialized",
		zap.String("battle", cfg.Battle.Battle),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// connect opens the survivor store's pool or exits.
func connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) *postgres.Pool {
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool
}
