package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "env: production\n"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "./uploads", cfg.Paths.Static)
	assert.Contains(t, cfg.DSN(), "tcp(127.0.0.1:3306)/bookwright")
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
port: 9000
env: development
database:
  host: db.internal
  port: 3307
  user: app
  password: secret
  name: books
jwt_secret: super-secret
allowed_origins:
  - "*.example.com"
ai:
  outline_model: gpt-4o-mini
  providers:
    - id: main
      name: Main
      type: OpenAI
      api_key: sk-test
      default_model: gpt-4o
      enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Contains(t, cfg.DSN(), "app:secret@tcp(db.internal:3307)/books")
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OutlineModel)
	require.Len(t, cfg.AI.Providers, 1)
	assert.True(t, cfg.AI.Providers[0].Enabled)
	assert.Equal(t, "sk-test", cfg.AI.Providers[0].APIKey)
}

func TestLoadExplicitDSNWins(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  dsn: user:pw@tcp(h:3306)/db\n"))
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(h:3306)/db", cfg.DSN())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "prot: 9000\n"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	_, err := Load(writeConfig(t, "port: 70000\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
