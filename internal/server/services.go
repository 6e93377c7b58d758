package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
)

// TelnetService runs acc as a Service. Stopping it ends every open session.
func TelnetService(acc *telnet.Acceptor) Service {
	return &FuncService{StartFn: acc.ListenAndServe, StopFn: acc.Stop}
}

// BattleReporter logs the number of running battles every interval and once
// more when stopped.
type BattleReporter struct {
	sessions *battle.Manager
	interval time.Duration
	logger   *zap.Logger

	once sync.Once
	done chan struct{}
}

// NewBattleReporter creates a BattleReporter.
//
// Precondition: sessions and logger must be non-nil; interval must be positive.
func NewBattleReporter(sessions *battle.Manager, interval time.Duration, logger *zap.Logger) *BattleReporter {
	return &BattleReporter{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start reports until Stop is called.
func (r *BattleReporter) Start() error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.logger.Info("active battles", zap.Int("count", r.sessions.Count()))
		case <-r.done:
			return nil
		}
	}
}

// Stop ends reporting. Battles still registered at this point were cut off
// by the shutdown.
func (r *BattleReporter) Stop() {
	r.once.Do(func() {
		close(r.done)
		if n := r.sessions.Count(); n > 0 {
			r.logger.Warn("battles interrupted by shutdown", zap.Int("count", n))
		}
	})
}

// HealthMonitor runs a dependency check every interval, warning on each
// failure and noting when the dependency recovers.
type HealthMonitor struct {
	name     string
	interval time.Duration
	check    func(ctx context.Context) error
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHealthMonitor creates a HealthMonitor for the dependency called name.
//
// Precondition: interval must be positive; check and logger must be non-nil.
func NewHealthMonitor(name string, interval time.Duration, check func(ctx context.Context) error, logger *zap.Logger) *HealthMonitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &HealthMonitor{
		name:     name,
		interval: interval,
		check:    check,
		logger:   logger.With(zap.String("dependency", name)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start checks until Stop is called. A check in flight when Stop is called
// sees a cancelled context.
func (h *HealthMonitor) Start() error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	failing := 0
	for {
		select {
		case <-h.ctx.Done():
			return nil
		case <-ticker.C:
		}
		err := h.check(h.ctx)
		switch {
		case h.ctx.Err() != nil:
			return nil
		case err != nil:
			failing++
			h.logger.Warn("health check failed", zap.Int("consecutive", failing), zap.Error(err))
		case failing > 0:
			h.logger.Info("health check recovered", zap.Int("failed_checks", failing))
			failing = 0
		}
	}
}

// Stop ends checking.
func (h *HealthMonitor) Stop() {
	h.cancel()
}
