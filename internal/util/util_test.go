package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerModes(t *testing.T) {
	defer SetDebugMode(false)
	err := errors.New("bookmark rejected")

	SetDebugMode(false)
	out := ErrorHandler(err)
	assert.Contains(t, out, "bookmark rejected")
	assert.Contains(t, out, "--debug")

	SetDebugMode(true)
	out = ErrorHandler(err)
	assert.Contains(t, out, "DEBUG ERROR")
	assert.Contains(t, out, "TestErrorHandlerModes", "debug output should carry the stack trace")
}

func TestLoggerHelpersAreNilSafe(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()
	Logger = nil

	assert.NotPanics(t, func() {
		Debug("x")
		Info("x")
		Warn("x")
		Error("x")
		Warnf("%d", 1)
		Errorf("%d", 1)
	})
}

func TestInitLoggerToWritesToWriter(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	var buf bytes.Buffer
	InitLoggerTo(&buf)
	Warn("watchlist reload failed", "err", "boom")
	assert.Contains(t, buf.String(), "watchlist reload failed")
}

func TestFormattedHelpersWriteThroughLogger(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()
	defer SetDebugMode(false)

	var buf bytes.Buffer
	SetDebugMode(true)
	InitLoggerTo(&buf)

	Debugf("stale reload #%d", 3)
	Warnf("logout API error: %v", "timeout")
	Errorf("failed to delete stored token: %v", "disk full")

	out := buf.String()
	assert.Contains(t, out, "stale reload #3")
	assert.Contains(t, out, "logout API error: timeout")
	assert.Contains(t, out, "failed to delete stored token: disk full")

	buf.Reset()
	SetDebugMode(false)
	InitLoggerTo(&buf)
	Debugf("hidden %d", 1)
	assert.NotContains(t, buf.String(), "hidden", "Debugf is silent outside debug mode")
}

func TestNewHTTPClientTimeout(t *testing.T) {
	c := NewHTTPClient(0)
	require.NotNil(t, c)
	assert.Equal(t, DefaultHTTPTimeout, c.Timeout)

	c = NewHTTPClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.Timeout)

	assert.Same(t, GetSharedClient(), GetSharedClient())
}
