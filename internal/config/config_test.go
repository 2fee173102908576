package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  listen: ":9090"
storage:
  publicDir: /srv/board
  validateUploads: false
signal:
  redisAddr: redis:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "32M", cfg.Server.MaxUploadSize)
	assert.Equal(t, "/srv/board", cfg.Storage.PublicDir)
	assert.False(t, cfg.Storage.ValidateUploads)
	assert.Equal(t, "redis:6379", cfg.Signal.RedisAddr)
	assert.Equal(t, "moodboard:events", cfg.Signal.Channel)

	assert.Equal(t, filepath.Join("/srv/board", "text", "text.json"), cfg.Storage.TextFilePath())
	assert.Equal(t, filepath.Join("/srv/board", "images"), cfg.Storage.ImageDirPath())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestAbsoluteStoragePaths(t *testing.T) {
	s := Storage{PublicDir: "public", TextFile: "/var/texts.json", ImageDir: "/var/images"}
	assert.Equal(t, "/var/texts.json", s.TextFilePath())
	assert.Equal(t, "/var/images", s.ImageDirPath())
}
