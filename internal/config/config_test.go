package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "1024")
	t.Setenv("UPLOAD_ALLOWED_MIME_TYPES", "application/pdf, text/plain")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example , http://b.example")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, int64(1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"application/pdf", "text/plain"}, cfg.AllowedMimeTypeList())
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOriginList())
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "app"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db.local"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "chat"
	cfg.MySQL.Params = "parseTime=true"

	assert.Equal(t, "app:secret@tcp(db.local:3307)/chat?parseTime=true", cfg.MySQLDSN())
}

func TestInvalidIntEnvFallsBack(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")

	cfg := defaultConfig()
	overrideByEnv(cfg)
	assert.Equal(t, 8080, cfg.App.Port)
}
