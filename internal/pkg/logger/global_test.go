package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useGlobalLogger(t *testing.T, l *ZapLogger) {
	t.Helper()
	mu.RLock()
	prev := globalLogger
	mu.RUnlock()
	SetGlobalLogger(l)
	t.Cleanup(func() { SetGlobalLogger(prev) })
}

func TestGlobalHelpers_ReportCallSite(t *testing.T) {
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "debug"}, nil, &buf)
	require.NoError(t, err)
	useGlobalLogger(t, l)

	Info("plain")
	Warn("plain warn")
	InfoCtx(context.Background(), "with context")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		caller, ok := entry["caller"].(string)
		require.True(t, ok, "missing caller in %v", entry)
		assert.Contains(t, caller, "logger/global_test.go:")
	}
}

func TestZapLogger_DirectCallKeepsCallSite(t *testing.T) {
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "info"}, nil, &buf)
	require.NoError(t, err)

	l.Info("direct")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0]["caller"], "logger/global_test.go:")
}
