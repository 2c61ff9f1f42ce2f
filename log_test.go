package amgo

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"quiet", LogQuiet},
		{"OFF", LogQuiet},
		{"error", LogError},
		{"warn", LogWarning},
		{" Warning ", LogWarning},
		{"info", LogInfo},
		{"", LogInfo},
		{"debug", LogDebug},
		{"trace", LogTrace},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestLogLevelStringRoundTrip(t *testing.T) {
	for l := LogQuiet; l <= LogTrace; l++ {
		got, err := ParseLogLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	assert.Equal(t, "quiet", LogLevel(-1).String())
	assert.Equal(t, "trace", LogLevel(99).String())
}

func TestNewLoggerQuiet(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, NewLogger(&buf, LogQuiet))
	assert.Nil(t, NewLogger(nil, LogInfo))
}

func TestContextLogsBoot(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithLogger(NewLogger(&buf, LogInfo)))
	c.Boot()
	c.Shutdown()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, Version, ev["version"])
	assert.Contains(t, lines[0], "amgo: booted")
	assert.Contains(t, lines[1], "amgo: shut down")
}

func TestTypeConflictIsLogged(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithLogger(NewLogger(&buf, LogWarning)))
	w := &widget{}
	Store(c, w)
	Store(c, (*gadget)(unsafe.Pointer(w)))

	assert.Contains(t, buf.String(), "refusing to store handle")
	assert.Contains(t, buf.String(), "amgo.gadget")
}
