package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "data/badger", cfg.Database.Path)
	assert.Equal(t, "media", cfg.Media.Dir)
	assert.Equal(t, "yatube_session", cfg.Auth.CookieName)
	assert.Equal(t, 20*time.Second, cfg.IndexTTL())
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 72*time.Hour, cfg.ResetTTL())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	assert.False(t, cfg.Production())
	assert.Empty(t, cfg.Mail.Host)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
database:
  path: /var/lib/yatube
cache:
  index_ttl: 5s
logging:
  level: debug
  pretty: false
mail:
  host: smtp.example.com
  port: 2525
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/yatube", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.IndexTTL())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Pretty)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, 2525, cfg.Mail.Port)
	// untouched keys keep their defaults
	assert.Equal(t, "media", cfg.Media.Dir)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")
	t.Setenv("YATUBE_ADDR", ":7000")
	t.Setenv("YATUBE_INDEX_TTL", "1m")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.IndexTTL())
	assert.False(t, cfg.Logging.Pretty)
	assert.Equal(t, 465, cfg.Mail.Port)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed yaml", body: "server: [unclosed"},
		{name: "bad duration", body: "cache:\n  index_ttl: soon\n"},
		{name: "empty secret", body: "auth:\n  secret: \"\"\n"},
		{name: "default secret in production", body: "server:\n  mode: production\n"},
		{name: "bad smtp port", body: "mail:\n  host: smtp.example.com\n  port: 70000\n"},
		{name: "bad env integer", env: map[string]string{"SMTP_PORT": "many"}},
		{name: "bad env bool", env: map[string]string{"LOG_PRETTY": "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv(PathEnv, "")
	assert.Equal(t, DefaultPath, Path())

	t.Setenv(PathEnv, "/etc/yatube.yaml")
	assert.Equal(t, "/etc/yatube.yaml", Path())
}
