// Package server runs the long-lived parts of the battle server and shuts
// them down in order on a signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until Stop is called or
// the service fails.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

type entry struct {
	name string
	svc  Service
}

// Lifecycle starts services in registration order and stops them in reverse.
type Lifecycle struct {
	logger  *zap.Logger
	signals []os.Signal

	mu      sync.Mutex
	entries []entry
}

// NewLifecycle creates a Lifecycle that stops on SIGINT or SIGTERM.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger:  logger,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Add registers svc under name.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
	l.mu.Unlock()
}

// Run starts every service and blocks until a signal arrives, ctx is
// cancelled or a service fails.
//
// Postcondition: every service has been stopped; the first service failure,
// if any, is returned.
func (l *Lifecycle) Run(ctx context.Context) error {
	began := time.Now()
	ctx, cancel := signal.NotifyContext(ctx, l.signals...)
	defer cancel()

	l.mu.Lock()
	entries := slices.Clone(l.entries)
	l.mu.Unlock()

	failed := l.launch(entries)
	l.logger.Info("services running", zap.Int("count", len(entries)))

	var err error
	select {
	case err = <-failed:
		l.logger.Error("service failed, shutting down", zap.Error(err))
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	}

	for _, e := range slices.Backward(entries) {
		t := time.Now()
		e.svc.Stop()
		l.logger.Info("service stopped", zap.String("service", e.name), zap.Duration("elapsed", time.Since(t)))
	}
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(began)))
	return err
}

// launch starts each entry on its own goroutine. Failures arrive on the
// returned channel, which has room for all of them.
func (l *Lifecycle) launch(entries []entry) <-chan error {
	failed := make(chan error, len(entries))
	for _, e := range entries {
		l.logger.Info("starting service", zap.String("service", e.name))
		go func() {
			if err := e.svc.Start(); err != nil {
				failed <- fmt.Errorf("service %s: %w", e.name, err)
			}
		}()
	}
	return failed
}
