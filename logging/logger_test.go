package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})

	log.Info("hidden")
	log.Warn("shown", "page", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "page=3")
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := WithComponent(New(Config{Level: LevelDebug, Format: "json", Output: &buf}), "heap")

	log.Debug("insert", "slot", 1)

	require.Contains(t, buf.String(), `"component":"heap"`)
	require.Contains(t, buf.String(), `"slot":1`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel("Error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestOrDiscard(t *testing.T) {
	require.NotNil(t, OrDiscard(nil))
	OrDiscard(nil).Error("goes nowhere")
}
