package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetBeforeInitIsUsable(t *testing.T) {
	assert.NotNil(t, Get())
}

func TestInitLevels(t *testing.T) {
	require.NoError(t, Init(true, DebugLevel))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init(false, WarnLevel))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))

	assert.Equal(t, zapcore.InfoLevel, LogLevel("verbose").zapLevel())
}
