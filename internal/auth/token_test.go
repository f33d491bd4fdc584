package auth

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestTokenLifecycle(t *testing.T) {
	t.Setenv(EnvToken, "")
	s := Store{Dir: t.TempDir()}

	ti, err := s.Get()
	assert.Equal(t, err, nil)
	assert.Equal(t, ti == nil, true)

	assert.Equal(t, s.Set("Bearer abc"), nil)
	ti, err = s.Get()
	assert.Equal(t, err, nil)
	assert.Equal(t, ti.Token, "abc")
	assert.Equal(t, ti.Source, "file")

	assert.Equal(t, s.Delete(), nil)
	assert.Equal(t, s.Delete(), nil)
	ti, _ = s.Get()
	assert.Equal(t, ti == nil, true)
}

func TestEnvOverridesFile(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	assert.Equal(t, s.Set("file-token"), nil)
	t.Setenv(EnvToken, "bearer env-token")

	ti, err := s.Get()
	assert.Equal(t, err, nil)
	assert.Equal(t, ti.Token, "env-token")
	assert.Equal(t, ti.Source, "env")
}

func TestSetRejectsEmpty(t *testing.T) {
	assert.NotEqual(t, Store{Dir: t.TempDir()}.Set("  "), nil)
}
