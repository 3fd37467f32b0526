package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestLoggerFormatsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Named("sync").With("run", "r1")

	l.Info("synced %d of %d", 2, 3)
	l.Debugw("request started", "method", "GET")
	l.Error("boom: %v", assert.AnError)

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, "synced 2 of 3", entries[0].Message)
		assert.Equal(t, "sync", entries[0].LoggerName)
		assert.Equal(t, "r1", entries[0].ContextMap()["run"])
		assert.Equal(t, "GET", entries[1].ContextMap()["method"])
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("nothing %s", "here")
	assert.NoError(t, l.Sync())
}
