package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for logging setup:
// - ParseLevel accepts slog level names, case-insensitively, and defaults to info
// - New builds text and JSON handlers honoring the level
// - New rejects unknown formats with ErrInvalidFormat

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "level %q", tt.name)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", slog.String("path", "batch[0]"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "batch[0]", record["path"])
}

func TestNew_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("debug", "", &buf)
	require.NoError(t, err)

	logger.Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := New("info", "xml", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
