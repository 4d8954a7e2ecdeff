package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/platform/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	opts := FromConfig(config.LogConfig{Level: "debug", Format: "json"}, "truetrace")
	opts.Output = &buf

	New(opts).Debug("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "truetrace", rec["service"])
	assert.Equal(t, Version, rec["version"])
	assert.Equal(t, "v", rec["k"])
}

func TestNewTextFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: "warn", Output: &buf}).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
