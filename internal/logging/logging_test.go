package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	assert.Equal(t, err, nil)
	assert.Equal(t, l, slog.LevelDebug)

	l, err = ParseLevel(" WARN ")
	assert.Equal(t, err, nil)
	assert.Equal(t, l, slog.LevelWarn)

	_, err = ParseLevel("loud")
	assert.NotEqual(t, err, nil)
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown", "id", "1")
	assert.MatchRegex(t, buf.String(), `level=WARN msg=shown id=1`)
	assert.NotMatchRegex(t, buf.String(), `hidden`)
}

func TestOpenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "tada.log")
	log, f, err := OpenFile(p, slog.LevelInfo)
	assert.Equal(t, err, nil)
	log.Info("hello")
	assert.Equal(t, f.Close(), nil)

	b, err := os.ReadFile(p)
	assert.Equal(t, err, nil)
	assert.MatchRegex(t, string(b), `msg=hello`)
}
