package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	} {
		require.Equal(t, want, parseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	log, err := New("debug", "console")
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn", "xml")
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestWithCorrelationID(t *testing.T) {
	log := NewNop()
	require.Same(t, log, log.WithCorrelationID(""))
	require.NotSame(t, log, log.WithCorrelationID("abc"))
}
