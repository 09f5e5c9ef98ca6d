package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriterFields(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	l := NewWithWriter("scheduler", &buf)
	l.Debugf("hidden")
	l.Infof("run %s", "fcfs")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "scheduler", rec["component"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "run fcfs", rec["message"])
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	l := NewWithWriter("opti", &buf)
	l.Debugw("step", map[string]any{"step": 3})
	assert.Contains(t, buf.String(), `"step":3`)
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Infof("nothing")
}

func TestSetDefaultLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, SetDefaultLevel("warn"))
	t.Cleanup(func() { _ = SetDefaultLevel("info") })
	var buf bytes.Buffer
	l := NewWithWriter("cfg", &buf)
	l.Infof("hidden")
	l.Warnf("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Error(t, SetDefaultLevel("loud"))
}
