package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/cardswap/internal/config"
)

// captureOutput redirects stdout to a buffer during f()
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	return buf.String()
}

func logConfig(level, format, component string, source bool) *config.Config {
	cfg := &config.Config{}
	cfg.Log.Level = level
	cfg.Log.Format = format
	cfg.Log.Component = component
	cfg.Log.Source = source
	return cfg
}

func TestLogger_TextFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("debug", "text", "test", false))
		Info("hello cardswap", "key", "value")
	})

	assert.Contains(t, out, "hello cardswap")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "key=value")
}

func TestLogger_JSONFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("info", "json", "json_test", false))
		Info("json log", "foo", "bar")
	})

	assert.Contains(t, out, `"msg":"json log"`)
	assert.Contains(t, out, `"component":"json_test"`)
	assert.Contains(t, out, `"foo":"bar"`)
}

func TestLogger_LevelFilter(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("error", "text", "", false))
		Info("should not appear")
		Error("should appear")
	})

	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestLogger_WithAddsFields(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("debug", "text", "", false))
		log := With("req_id", "123")
		log.Info("processing request")
	})

	assert.Contains(t, out, "req_id=123")
}

func TestLogger_ExplicitOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: FormatJSON, Component: "buf", Output: &buf})
	Debug("to buffer")

	assert.True(t, strings.Contains(buf.String(), `"msg":"to buffer"`), buf.String())
}

func TestLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: FormatText, Output: &buf})

	ctx := NewContext(context.Background(), With("request_id", "abc"))
	FromContext(ctx).Info("scoped")
	FromContext(context.Background()).Info("global")

	out := buf.String()
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "msg=global")
}

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: FormatJSON, Output: &buf})

	l.Info("subscription bound", "purchase_token", "tok-123", "Password", "hunter22", "user_id", "u1")

	out := buf.String()
	assert.NotContains(t, out, "tok-123")
	assert.NotContains(t, out, "hunter22")
	assert.Contains(t, out, `"purchase_token":"[REDACTED]"`)
	assert.Contains(t, out, `"user_id":"u1"`)
}

func TestLogger_FromContextOrFallback(t *testing.T) {
	var scoped, fallback bytes.Buffer
	s := New(Config{Format: FormatText, Output: &scoped})
	f := New(Config{Format: FormatText, Output: &fallback})

	FromContextOr(NewContext(context.Background(), s), f).Info("in request")
	FromContextOr(context.Background(), f).Info("in sweeper")

	assert.Contains(t, scoped.String(), "in request")
	assert.NotContains(t, scoped.String(), "in sweeper")
	assert.Contains(t, fallback.String(), "in sweeper")
}
