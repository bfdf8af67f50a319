package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info"}, &buf)
	l.Info().Str("component", "test").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "warn"}, &buf)
	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
	NewWithWriter(Config{Level: "info"}, &bytes.Buffer{})
}

func TestCronLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	cl := CronLogger{Log: NewWithWriter(Config{Level: "info"}, &buf)}
	cl.Error(errors.New("boom"), "panic", "job", "tick")

	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), `"job":"tick"`)
}
