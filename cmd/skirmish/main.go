// Package main plays one battle on the local terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/console"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	battleID := flag.String("battle", "", "battle id to play (overrides battle.battle)")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *battleID != "" {
		cfg.Battle.Battle = *battleID
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
	logger.Info("content loaded",
		zap.String("dir", cfg.Battle.ContentDir),
		zap.Int("battles", len(content.Battles)),
		zap.Int("levels", len(content.Levels)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store console.SurvivorStore
	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		store = postgres.NewSurvivorRepository(pool.DB())
	}

	runner := console.NewRunner(cfg.Battle, content, store, battle.NewManager(), logger)
	term := console.NewTerminal(console.NewStdio(os.Stdin, os.Stdout), !*noColor)
	logger.Debug("runner ready", zap.Duration("startup", time.Since(start)))

	res, err := runner.Play(ctx, term)
	switch {
	case errors.Is(err, console.ErrQuit):
		fmt.Println("You leave the battlefield.")
		return
	case err != nil:
		logger.Fatal("battle failed", zap.Error(err))
	}
	outcome := "ended"
	switch {
	case res.Victory:
		outcome = "won"
	case res.Withdrawn:
		outcome = "withdrawn"
	}
	fmt.Printf("Battle %s after %d rounds; %d opponents survive.\n", outcome, res.Rounds, res.Survivors)
}
