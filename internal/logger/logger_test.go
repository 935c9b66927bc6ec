package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter_ProductionWritesJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	InitWriter(&buf, false, "")

	Component("pagination").Info("page loaded", "results", 2)
	slog.Debug("hidden in production")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "page loaded", entry["msg"])
	assert.Equal(t, "pagination", entry["component"])
	assert.EqualValues(t, 2, entry["results"])
	assert.NotContains(t, buf.String(), "hidden in production")
}

func TestInitWriter_DevelopmentLogsDebug(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	InitWriter(&buf, true, "")

	slog.Debug("snapshot fresh", "key", "listing")

	assert.Contains(t, buf.String(), "snapshot fresh")
	assert.Contains(t, buf.String(), "key=listing")
}

func TestInitWriter_InvalidSentryDSNKeepsConsole(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	flush := InitWriter(&buf, false, "not a dsn")
	require.NotNil(t, flush)
	flush()

	slog.Error("content api unreachable")
	assert.Contains(t, buf.String(), "content api unreachable")
}
