package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
)

const banner = "Skirmish: type help at any prompt for the command list."

// BattleHandler plays one battle per Telnet connection.
type BattleHandler struct {
	runner *Runner
	logger *zap.Logger
}

// NewBattleHandler creates a telnet.SessionHandler backed by runner.
//
// Precondition: runner and logger must be non-nil.
func NewBattleHandler(runner *Runner, logger *zap.Logger) *BattleHandler {
	return &BattleHandler{runner: runner, logger: logger}
}

// HandleSession runs the configured battle over conn. Quitting is a clean
// end of the session.
func (h *BattleHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	term := NewTerminal(conn, true)
	if err := conn.WriteLine(telnet.Colorize(telnet.Bold, banner)); err != nil {
		return err
	}
	res, err := h.runner.Play(ctx, term)
	switch {
	case errors.Is(err, ErrQuit):
		_ = conn.WriteLine("You leave the battlefield.")
		return nil
	case err != nil:
		return fmt.Errorf("battle %s: %w", res.SessionID, err)
	}
	h.logger.Debug("battle result",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Bool("victory", res.Victory),
		zap.Bool("withdrawn", res.Withdrawn),
	)
	return conn.WriteLine("The battle is over.")
}
