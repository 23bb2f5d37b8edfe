package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})

	l.WithFields(map[string]interface{}{"component": "test"}).
		Info("patient created", "patient_id", 42)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "patient created", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, float64(42), entry["patient_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: WarnLevel, Output: &buf, JSON: true})

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Error(errors.New("boom"), "store failure")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}
