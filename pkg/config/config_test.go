package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dotmatrix.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
display = "terminal"
scale = 2
unthrottled = true

[keys]
a = "j"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "terminal", cfg.Display)
	assert.Equal(t, 2, cfg.Scale)
	assert.True(t, cfg.Unthrottled)
	assert.Equal(t, "j", cfg.Keys.A)
	assert.Equal(t, "x", cfg.Keys.B, "unset keys keep their defaults")
}

func TestLoad_MalformedFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("display = ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
