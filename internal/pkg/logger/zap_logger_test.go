package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewZapLogger_WritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "debug", Service: "otpauth-test"}, nil, &buf)
	require.NoError(t, err)

	l.Info("hello", String("k", "v"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["message"])
	assert.Equal(t, "otpauth-test", entries[0]["service"])
	assert.Equal(t, "v", entries[0]["k"])
	assert.Equal(t, "info", entries[0]["level"])
}

func TestNewZapLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "warn"}, nil, &buf)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["message"])
}

func TestNewZapLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "loud"}, nil, &buf)
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("kept")

	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestNewZapLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "auth.log")
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "info", FilePath: path}, nil, &buf)
	require.NoError(t, err)

	l.Info("to file")
	require.NoError(t, l.Close())

	assert.FileExists(t, path)
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice@x.com", "a***@x.com"},
		{"a@x.com", "a***@x.com"},
		{"no-at-sign", "***"},
		{"@x.com", "***"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskEmail(tt.in), tt.in)
	}
}

func TestZapEchoMiddleware(t *testing.T) {
	var buf bytes.Buffer
	l, err := newZapLogger(ZapConfig{Level: "info"}, nil, &buf)
	require.NoError(t, err)

	e := echo.New()
	e.Use(ZapEchoMiddleware(l))
	e.GET("/ok", func(c echo.Context) error {
		c.Set(ContextKeyUserID, "u-1")
		return c.NoContent(http.StatusOK)
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Request processed", entries[0]["message"])
	assert.Equal(t, "u-1", entries[0]["user_id"])
	assert.Equal(t, "Server error", entries[1]["message"])
	assert.Equal(t, "anonymous", entries[1]["user_id"])
	assert.EqualValues(t, 500, entries[1]["status"])
}
