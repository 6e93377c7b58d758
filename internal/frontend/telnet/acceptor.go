package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// SessionHandler runs one battle over a connected Telnet session.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// busyMessage is sent to clients refused because MaxSessions is reached.
const busyMessage = "All battle slots are taken. Try again later."

// Acceptor listens for Telnet connections and gives each one to a
// SessionHandler, up to cfg.MaxSessions at a time.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	// base is cancelled by Stop; every session context derives from it.
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	sessions sync.WaitGroup
	active   atomic.Int32
}

// NewAcceptor creates a Telnet acceptor with the given configuration.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready for ListenAndServe.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	base, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		base:    base,
		cancel:  cancel,
	}
}

// ListenAndServe accepts connections until Stop is called.
//
// Precondition: ListenAndServe has not been called before.
// Postcondition: Returns nil after Stop, or the listen error.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()
	l, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	a.mu.Lock()
	if a.base.Err() != nil {
		a.mu.Unlock()
		_ = l.Close()
		return nil
	}
	a.listener = l
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", l.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)
	for {
		raw, err := l.Accept()
		switch {
		case a.base.Err() != nil:
			if raw != nil {
				_ = raw.Close()
			}
			return nil
		case errors.Is(err, net.ErrClosed):
			return nil
		case err != nil:
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}
		if !a.admit() {
			a.logger.Warn("refusing connection, session limit reached",
				zap.String("remote_addr", raw.RemoteAddr().String()),
				zap.Int("max_sessions", a.cfg.MaxSessions),
			)
			a.refuse(raw)
			continue
		}
		a.mu.Lock()
		if a.base.Err() != nil {
			a.mu.Unlock()
			a.active.Add(-1)
			_ = raw.Close()
			return nil
		}
		a.sessions.Add(1)
		a.mu.Unlock()
		go a.serve(raw)
	}
}

// admit reserves a session slot.
func (a *Acceptor) admit() bool {
	limit := int32(a.cfg.MaxSessions)
	for {
		n := a.active.Load()
		if limit > 0 && n >= limit {
			return false
		}
		if a.active.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// serve runs one session. Cancelling the session context closes the
// connection so a handler blocked in ReadLine returns.
func (a *Acceptor) serve(raw net.Conn) {
	defer a.sessions.Done()
	defer a.active.Add(-1)

	start := time.Now()
	log := a.logger.With(zap.String("remote_addr", raw.RemoteAddr().String()))
	log.Info("client connected")

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	ctx, cancel := context.WithCancel(a.base)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.Negotiate(); err != nil {
		log.Error("telnet negotiation failed", zap.Error(err))
		return
	}
	if err := a.handler.HandleSession(ctx, conn); err != nil {
		log.Debug("session ended", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	log.Info("battle session ended", zap.Duration("duration", time.Since(start)))
}

func (a *Acceptor) refuse(raw net.Conn) {
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	_ = conn.WriteLine(Colorize(Yellow, busyMessage))
	_ = conn.Close()
}

// ActiveSessions returns the number of sessions currently being handled.
func (a *Acceptor) ActiveSessions() int {
	return int(a.active.Load())
}

// Stop closes the listener, cancels every session and waits for them to
// return. Calling Stop more than once is harmless.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.base.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.cancel()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.mu.Unlock()

	a.sessions.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Addr returns the listening address, or "" before the listener is open.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// IsRunning reports whether the acceptor is listening.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener != nil && a.base.Err() == nil
}
