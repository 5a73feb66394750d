package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
		require.NoError(t, err)

		logger.Info("hello", slog.String("isbn", "9780000000001"))
		assert.Contains(t, buf.String(), `"isbn":"9780000000001"`)
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Options{Level: "warn", Output: &buf})
		require.NoError(t, err)

		logger.Info("quiet")
		logger.Warn("loud")
		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := New(Options{Format: "xml"})
		assert.Error(t, err)
	})
}

func TestNewComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	NewComponentLogger(base, "series").Warn("fetch failed", Error(errors.New("boom")))

	out := buf.String()
	assert.True(t, strings.Contains(out, "component=series"), out)
	assert.Contains(t, out, "error=boom")

	assert.NotPanics(t, func() {
		NewComponentLogger(nil, "cover").Info("discarded")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
