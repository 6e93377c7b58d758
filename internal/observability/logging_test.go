package observability

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func TestNewLogger_LevelGatesEntries(t *testing.T) {
	for _, tc := range []struct {
		format, level string
		debug, warn   bool
	}{
		{"json", "debug", true, true},
		{"console", "debug", true, true},
		{"json", "info", false, true},
		{"console", "warn", false, true},
		{"json", "error", false, false},
	} {
		logger, err := NewLogger(config.LoggingConfig{Level: tc.level, Format: tc.format})
		require.NoError(t, err, "%s/%s", tc.format, tc.level)
		assert.Equal(t, tc.debug, logger.Core().Enabled(zapcore.DebugLevel), "%s/%s", tc.format, tc.level)
		assert.Equal(t, tc.warn, logger.Core().Enabled(zapcore.WarnLevel), "%s/%s", tc.format, tc.level)
	}
}

func TestNewLogger_Rejects(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"})
	assert.ErrorContains(t, err, `parsing log level "trace"`)

	_, err = NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestForSession(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	id := uuid.New()
	ForSession(zap.New(core), id, "cellar").Info("battle started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, id.String(), fields["session"])
	assert.Equal(t, "cellar", fields["battle"])
}
