package logger

import (
	"log/slog"
	"testing"

	"github.com/lexiflow/lexiflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	cases := []struct {
		configured string
		enabled    slog.Level
		disabled   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"DEBUG", slog.LevelDebug, slog.LevelDebug - 4},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.configured, func(t *testing.T) {
			logger := Setup(config.ServerConfig{LogLevel: tc.configured})
			require.NotNil(t, logger)
			assert.True(t, logger.Enabled(nil, tc.enabled))
			assert.False(t, logger.Enabled(nil, tc.disabled))
		})
	}
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	logger := Setup(config.ServerConfig{LogLevel: "verbose"})
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(nil, slog.LevelInfo))
	assert.False(t, logger.Enabled(nil, slog.LevelDebug))
}
