package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSettings(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", FormatText)
	require.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", FormatText)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestAdapter_JSONData(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", FormatJSON)
	require.NoError(t, err)

	Adapter{Logger: logger}.Error("Request failed", map[string]any{"status": 502})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Request failed", entry["msg"])
	assert.Equal(t, map[string]any{"status": float64(502)}, entry["data"])
}

func TestAdapter_TraceIsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", FormatText)
	require.NoError(t, err)

	Adapter{Logger: logger}.Trace("Client output", "a", "b")
	assert.Empty(t, buf.String())

	Adapter{Logger: logger}.Info("Request started")
	assert.Contains(t, buf.String(), "Request started")

	assert.NotPanics(t, func() { Adapter{Logger: logger}.Info() })
}

func TestContextLogger(t *testing.T) {
	logger := Discard()

	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
