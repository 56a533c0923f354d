package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "arbor.db", cfg.DBPath)
	assert.Equal(t, []string{".pike", ".pmod"}, cfg.Extensions)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "arbor.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path = "/tmp/idx.db"
extensions = [".pike"]

[exclude]
dirs = [".git", "build"]
files = ["*_gen.pike"]

[cache]
max_artifacts = 16
max_modules = 8

[watch]
debounce = 250000000
max_reindex_per_sec = 5.0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/idx.db", cfg.DBPath)
	assert.Equal(t, []string{".pike"}, cfg.Extensions)
	assert.Equal(t, []string{".git", "build"}, cfg.Exclude.Dirs)
	assert.Equal(t, []string{"*_gen.pike"}, cfg.Exclude.Files)
	assert.Equal(t, 16, cfg.Cache.MaxArtifacts)
	assert.Equal(t, 8, cfg.Cache.MaxModules)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 5.0, cfg.Watch.MaxReindexPerSec)
}

func TestLoadBadTOML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("db_path = ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
