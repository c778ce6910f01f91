package obslog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/opencog/metapop/internal/obslog"
)

func TestNewWithNilZapFallsBackToNop(t *testing.T) {
	log := obslog.New(nil)
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("hello") })
}

func TestNopDiscardsEverything(t *testing.T) {
	log := obslog.NewNop()
	assert.NotPanics(t, func() {
		log.Fine("fine")
		log.Debug("debug")
		log.Info("info")
		log.Warn("warn")
		log.Error("error")
	})
}

func TestFineMapsToDebugWithFineField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := obslog.New(zap.New(core))

	log.Fine("exemplar chosen", zap.Int("id", 7))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "exemplar chosen", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(7), fields["id"])
	assert.Equal(t, true, fields["fine"])
}

func TestLevelsRouteToMatchingZapLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := obslog.New(zap.New(core))

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}
