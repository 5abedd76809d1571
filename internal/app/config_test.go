package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "/chatbot", cfg.AnalyzeRoute)
	assert.Equal(t, "https://openfoodfacts.org", cfg.Upstream.BaseURL)
	assert.Equal(t, "FoodScan - Go Service", cfg.Upstream.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, 10000, cfg.Sessions.Max)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 3*time.Second, cfg.Graceful.ReadinessDelay)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FOODSCAN_ADDR", "127.0.0.1:9000")
	t.Setenv("FOODSCAN_SESSIONS_MAX", "5")
	t.Setenv("FOODSCAN_UPSTREAM_TIMEOUT", "2s")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 5, cfg.Sessions.Max)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
}

func TestLoadConfig_YAML(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeFile(t, "config.yaml", "addr: 127.0.0.1:7000\nsessions:\n  max: 3\n")

	cfg, err := loadConfig([]string{}, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, 3, cfg.Sessions.Max)
}

func TestLoadConfig_TOML(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeFile(t, "config.toml", "addr = \"127.0.0.1:7001\"\n\n[sessions]\nmax = 7\n")

	cfg, err := loadConfig([]string{}, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7001", cfg.Addr)
	assert.Equal(t, 7, cfg.Sessions.Max)
}

func TestLoadConfig_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "5000")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr)

	// An explicit address wins.
	t.Setenv("FOODSCAN_ADDR", "127.0.0.1:9000")
	cfg, err = loadConfig([]string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, env := range map[string][2]string{
		"timeout": {"FOODSCAN_UPSTREAM_TIMEOUT", "0s"},
		"ttl":     {"FOODSCAN_SESSIONS_TTL", "0s"},
		"max":     {"FOODSCAN_SESSIONS_MAX", "-1"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := loadConfig([]string{}, nil)
			require.Error(t, err)
		})
	}
}
