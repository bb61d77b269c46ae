package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "encore/internal/domain/errors"
)

func validConfig() Config {
	cfg := Default()
	cfg.Site.SiteURL = "https://example.com"
	return cfg
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Site.SiteURL = "not a url"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerr.ErrInvalid)

	cfg = validConfig()
	cfg.Songs.EntriesPerPage = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Songs.Post.Pattern = ""
	assert.Error(t, cfg.Validate())

	// 禁用的路由不要求 pattern
	cfg = validConfig()
	cfg.Songs.Post.Enabled = false
	cfg.Songs.Post.Pattern = ""
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Build.BasePath = "base/"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"base/"`)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  title: The Band
  site_url: https://band.example.com
songs:
  entries_per_page: 3
  tag:
    enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "The Band", cfg.Site.Title)
	assert.Equal(t, 3, cfg.Songs.EntriesPerPage)
	assert.False(t, cfg.Songs.Tag.Enabled)

	// 未写到的字段保留默认值
	assert.True(t, cfg.Songs.List.Enabled)
	assert.Equal(t, "songs/%slug%", cfg.Songs.Post.Pattern)
	assert.False(t, cfg.Build.Now.IsZero())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
