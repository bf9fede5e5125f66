package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		l, err := New("dev", lvl)
		require.NoError(t, err, lvl)
		require.NotNil(t, l.SugaredLogger)
	}
	_, err := New("prod", "loud")
	require.Error(t, err)
}

func TestRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Info("configured", "api_key", "sk-123", "model", "gpt-4o", "input_tokens", 12)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.Equal(t, "gpt-4o", fields["model"])
	assert.EqualValues(t, 12, fields["input_tokens"])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.With("source", "Lec1").Warn("still ignored")
}
