package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewStdoutLogger(t *testing.T) {
	logger := New(Options{Stdout: true, Level: "info"})
	assert.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestToZapLevelFallsBackToDebug(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, toZapLevel("nonsense"))
	assert.Equal(t, zapcore.DebugLevel, toZapLevel(""))
	assert.Equal(t, zapcore.WarnLevel, toZapLevel("WARN"))
}

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger := New(Options{
		Filename:   dir + "/server.log",
		MaxSize:    1,
		MaxAge:     1,
		MaxBackups: 1,
	})
	assert.NotNil(t, logger)
	logger.Info("hello")
}
