package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init("production"))
	assert.False(t, zap.L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("warn"))
	assert.False(t, zap.L().Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, SetLevel("loud"))
}
