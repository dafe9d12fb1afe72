package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriters(Config{Level: "info", Format: "console"}, &buf)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("chat turn", zap.String("character_id", "messi"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "chat turn")
	assert.Contains(t, out, "messi")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriters(Config{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Debug("structured", zap.Int("messages", 5))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "structured", parsed["msg"])
	assert.Equal(t, "debug", parsed["level"])
	assert.EqualValues(t, 5, parsed["messages"])
}

func TestNew_MultipleWriters(t *testing.T) {
	var a, b bytes.Buffer
	l, err := NewWithWriters(Config{Level: "info"}, &a, &b)
	require.NoError(t, err)
	l.Info("multi")

	assert.Contains(t, a.String(), "multi")
	assert.Contains(t, b.String(), "multi")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
