package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"https://vertex-convert.netlify.app"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Convert.IncludeNarrative)
	assert.Equal(t, int64(50), cfg.Convert.MaxUploadMB)
	assert.Equal(t, int64(50<<20), cfg.Convert.MaxUploadBytes())
	assert.Equal(t, 4, cfg.Convert.Concurrency)
	assert.False(t, cfg.S3.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NFSE_CONVERT_INCLUDE_NARRATIVE", "false")
	t.Setenv("NFSE_CONVERT_CONCURRENCY", "8")
	t.Setenv("NFSE_CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://a.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Convert.IncludeNarrative)
	assert.Equal(t, 8, cfg.Convert.Concurrency)
	assert.Equal(t, []string{"http://localhost:3000", "https://a.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NFSE_SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("NFSE_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_S3EnabledRequiresBucket(t *testing.T) {
	t.Setenv("NFSE_S3_ENABLED", "true")
	t.Setenv("NFSE_S3_BUCKET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("NFSE_S3_BUCKET", "notas")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "notas", cfg.S3.Bucket)
}
