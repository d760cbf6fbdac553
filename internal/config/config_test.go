package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/topicflow/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, config.DriverFile, cfg.Store.Driver)
	assert.Equal(t, ".topicflow", cfg.Store.Path)
	assert.Equal(t, 1, cfg.Render.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Empty(t, cfg.Validation.DisabledRules)
	assert.Empty(t, cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte(`
log:
  level: debug
store:
  driver: redis
redis:
  addr: file:6379
  ttl: 10m
http:
  addr: ":9000"
validation:
  disabled_rules: [missing-end-paths]
`), 0644))

	t.Setenv("TOPICFLOW_REDIS__ADDR", "env:6379")
	t.Setenv("TOPICFLOW_HTTP__ADDR", ":9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("redis-addr", "", "")
	flags.String("log-level", "info", "")
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse([]string{"--redis-addr", "flag:6379", "--addr", ":9200"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultFile, cfg.File)
	assert.Equal(t, "debug", cfg.Log.Level, "unchanged flag must not override the file")
	assert.Equal(t, config.DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "flag:6379", cfg.Redis.Addr, "flag overrides env")
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, ":9100", cfg.HTTP.Addr, "env overrides file; unmapped flags are ignored")
	assert.Equal(t, []string{"missing-end-paths"}, cfg.Validation.DisabledRules)
}

func TestLoad_EnvList(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOPICFLOW_VALIDATION__DISABLED_RULES", "missing-end-paths, system-entry")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"missing-end-paths", "system-entry"}, cfg.Validation.DisabledRules)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("TOPICFLOW_STORE__DRIVER", "mongo")
	_, err := config.Load("", nil)
	assert.ErrorContains(t, err, "unknown store driver")

	t.Setenv("TOPICFLOW_STORE__DRIVER", "postgres")
	_, err = config.Load("", nil)
	assert.ErrorContains(t, err, "store.dsn is required")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}
