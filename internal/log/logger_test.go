package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/datasage-io/datasage/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.Info("indexing complete", "collection", "schema", "count", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "indexing complete", line["msg"])
	assert.Equal(t, "schema", line["collection"])
	assert.Equal(t, float64(3), line["count"])
}

func TestLogger_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatPretty, "INFO")

	logger.Warn("retrying embedding request", "attempt", 2)

	out := buf.String()
	assert.Contains(t, out, "retrying embedding request")
	assert.Contains(t, out, "attempt")
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.Debug("not shown")
	assert.Empty(t, buf.String())

	debug := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG")
	debug.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").With("component", "store")

	logger.Info("ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "store", line["component"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{"WARN", "WARN"},
		{"warning", "WARN"},
		{"ERROR", "ERROR"},
		{"INFO", "INFO"},
		{"bogus", "INFO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLevel(tt.input).String(), "input %q", tt.input)
	}
}
