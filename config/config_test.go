package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("APP_ENV", "Test")
	assert.Equal(t, Test, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
	assert.Equal(t, "text", GetEnvironment().DefaultLogFormat())
	assert.Equal(t, "json", Production.DefaultLogFormat())
}

func TestLoadConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BACKEND_URL", "http://backend.test")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "http://backend.test", cfg.BackendURL)
	assert.Equal(t, "https://dummyjson.com", cfg.ExternalAPIURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "http://10.0.2.2", cfg.ImageRewriteTo)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nSUBMIT_LIMIT_PER_HOUR=3\n"), 0o600))
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "dev-secret")
	unsetenv(t, "LOG_LEVEL", "SUBMIT_LIMIT_PER_HOUR")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.SubmitLimitPerHour)
}

func TestLoadConfig_ProductionReadsSecrets(t *testing.T) {
	secrets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "jwt_secret"), []byte("prod-secret\n"), 0o600))
	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", secrets)
	t.Setenv("JWT_SECRET", "ignored-in-production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
}

func TestValidateConfig_CollectsErrors(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")

	err := ValidateConfig(&Config{
		ExternalAPIURL:    "not a url",
		BackendURL:        "http://backend.test",
		RequestTimeout:    0,
		ExternalRateLimit: 1,
		ExternalBurst:     1,
		DBDriver:          "mysql",
		ImageStore:        "backend",
	})
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"EXTERNAL_API_URL", "REQUEST_TIMEOUT", "DB_DRIVER", "JWT_SECRET"}, fields)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// unsetenv removes keys for the test and restores them afterwards
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
