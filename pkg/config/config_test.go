package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Key     string        `env:"TEST_CFG_KEY" envDefault:"wishList"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
	Enabled bool          `env:"TEST_CFG_ENABLED" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "wishList", cfg.Key)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Enabled)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_KEY", "favorites")
	t.Setenv("TEST_CFG_TIMEOUT", "250ms")
	t.Setenv("TEST_CFG_ENABLED", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "favorites", cfg.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Enabled)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestLoadDotEnv_ReadsFileWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_DOTENV_FRESH=from-file\nTEST_DOTENV_SET=from-file\n"), 0o600))
	t.Setenv("TEST_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("TEST_DOTENV_FRESH") })

	loaded, err := LoadDotEnv(path)

	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("TEST_DOTENV_FRESH"))
	assert.Equal(t, "from-env", os.Getenv("TEST_DOTENV_SET"))
}
