package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WMTcore/egg/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.Equal(t, "egg", cfg.Name)
	require.Equal(t, config.EnvProd, cfg.Env)
	require.Equal(t, ":7001", cfg.Server.Address)
	require.Equal(t, "run", cfg.RunDir)
	require.Equal(t, config.DefaultConfusedConfigurations, cfg.ConfusedConfigurations)
	require.Empty(t, cfg.Path())
	require.False(t, cfg.IsSet("keys"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `
name: showcase
env: local
keys: "a,b"
server:
  address: ":9000"
  readTimeout: 5s
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "showcase", cfg.Name)
		require.Equal(t, config.EnvLocal, cfg.Env)
		require.Equal(t, "a,b", cfg.Keys)
		require.Equal(t, ":9000", cfg.Server.Address)
		require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		require.Equal(t, path, cfg.Path())
	})

	t.Run("unspecified fields keep defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `name: minimal`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, ":7001", cfg.Server.Address)
		require.Equal(t, "run", cfg.RunDir)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "{broken")
		_, err := config.Load(path)
		require.Error(t, err)
	})
}

func TestIsSet(t *testing.T) {
	t.Parallel()

	t.Run("tracks keys present in the file", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `
keys: ""
bodyParser: true
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.True(t, cfg.IsSet("keys"), "explicit empty value still counts as set")
		require.True(t, cfg.IsSet("bodyParser"), "unknown keys are tracked too")
		require.False(t, cfg.IsSet("rundir"))
	})

	t.Run("Set records programmatic keys", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		require.False(t, cfg.IsSet("oldKey"))
		cfg.Set("oldKey", 5)
		require.True(t, cfg.IsSet("oldKey"))
	})
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
env: prod
keys: "from-file"
`)
	t.Setenv("EGG_ENV", "unittest")
	t.Setenv("EGG_KEYS", "from-env")
	t.Setenv("EGG_SERVER_ADDRESS", ":8123")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.EnvUnittest, cfg.Env)
	require.Equal(t, "from-env", cfg.Keys)
	require.Equal(t, ":8123", cfg.Server.Address)
	require.True(t, cfg.IsSet("keys"))
}

func TestIsLocal(t *testing.T) {
	t.Parallel()

	for env, want := range map[string]bool{
		config.EnvLocal:    true,
		config.EnvUnittest: true,
		config.EnvProd:     false,
		"staging":          false,
	} {
		cfg := config.Default()
		cfg.Env = env
		require.Equal(t, want, cfg.IsLocal(), "env %q", env)
	}
}
