package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"VULNVIZ_ENV", "VULNVIZ_ADDR", "VULNVIZ_API_BASE_URL", "VULNVIZ_PREDICT_TIMEOUT",
		"VULNVIZ_SESSION_IDLE", "VULNVIZ_LOG_LEVEL", "VULNVIZ_THEME",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)
	assert.Equal(t, 30*time.Second, c.PredictTimeout)
	assert.Equal(t, 30*time.Minute, c.SessionIdle)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.Dev())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VULNVIZ_ENV", "dev")
	t.Setenv("VULNVIZ_ADDR", ":9999")
	t.Setenv("VULNVIZ_PREDICT_TIMEOUT", "5s")
	c, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, c.Dev())
	assert.Equal(t, ":9999", c.Addr)
	assert.Equal(t, 5*time.Second, c.PredictTimeout)

	t.Setenv("VULNVIZ_SESSION_IDLE", "soon")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "VULNVIZ_SESSION_IDLE")

	t.Setenv("VULNVIZ_SESSION_IDLE", "-1m")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("VULNVIZ_API_BASE_URL")
	os.Unsetenv("VULNVIZ_LOG_LEVEL")
	dir := t.TempDir()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := Load()
	require.NoError(t, err, "a missing .env is not an error")
	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VULNVIZ_API_BASE_URL=http://model:8000\nVULNVIZ_LOG_LEVEL=debug\n"), 0o644))
	c, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "http://model:8000", c.APIBaseURL)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestEnvFile(t *testing.T) {
	t.Setenv("VULNVIZ_ENV", "dev")
	assert.Equal(t, ".env.dev", EnvFile())
	t.Setenv("VULNVIZ_ENV", "")
	assert.Equal(t, ".env", EnvFile())
}
