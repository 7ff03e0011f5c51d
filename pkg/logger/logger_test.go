package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.SetLevel("debug")
	l.Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	l.SetLevel("error")
	l.Info("quiet")
	l.Error("loud %s", "now")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud now")
}

func TestWithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	child := l.With("component", "hub")

	child.Debug("before")
	assert.Empty(t, buf.String())

	l.SetLevel("debug")
	child.Debug("after")
	assert.Contains(t, buf.String(), "component=hub")
	assert.Contains(t, buf.String(), "after")
}
