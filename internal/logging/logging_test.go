package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewHonoursLevel(t *testing.T) {
	logger := New("warn", "json", "fitness-api")
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	fallback := New("nonsense", "console", "fitness-api")
	require.True(t, fallback.Core().Enabled(zapcore.InfoLevel))
	require.False(t, fallback.Core().Enabled(zapcore.DebugLevel))
}
