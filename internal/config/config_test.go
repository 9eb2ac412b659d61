package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadAndValidate(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, DefaultInteractiveDir, cfg.Output.InteractiveDir)
	assert.Equal(t, 3650, cfg.Ingest.LookbackDays)
	assert.Equal(t, 100, cfg.Ingest.MinObservations)
	assert.Equal(t, 0, cfg.Ingest.SampleSize)
	assert.Equal(t, "fixed", cfg.RateLimit.Strategy)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.Delay)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, DefaultSQLitePath, cfg.Database.SQLitePath)
	assert.False(t, cfg.TelegramEnabled())

	starts, err := cfg.CategoryStarts()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), starts["crypto"])
}

func TestLoad_FileAndEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_LINEUP_KEY", "secret123")
	path := writeTempFile(t, `
output:
  dir: out/bulk
ingest:
  lookback_days: 365
  min_observations: 50
  sample_size: 10
  seed: 7
  category_start:
    crypto: "2018-06-01"
rate_limit:
  strategy: token_bucket
  delay: 500ms
data_source:
  base_url: https://bars.example.com
  api_key: ${TEST_LINEUP_KEY}
  timeout: 5s
`)
	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)

	assert.Equal(t, "out/bulk", cfg.Output.Dir)
	assert.Equal(t, 365, cfg.Ingest.LookbackDays)
	assert.Equal(t, 50, cfg.Ingest.MinObservations)
	assert.Equal(t, 10, cfg.Ingest.SampleSize)
	assert.Equal(t, uint64(7), cfg.Ingest.Seed)
	assert.Equal(t, "token_bucket", cfg.RateLimit.Strategy)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.Delay)
	assert.Equal(t, "secret123", cfg.DataSource.APIKey)
	assert.Equal(t, 5*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, map[string]string{"crypto": "2018-06-01"}, cfg.Ingest.CategoryStart)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LINEUP_OUTPUT_DIR", "/tmp/training")
	t.Setenv("LINEUP_MIN_OBSERVATIONS", "250")
	t.Setenv("LINEUP_SEED", "99")
	t.Setenv("LINEUP_RATE_LIMIT_DELAY", "3s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	path := writeTempFile(t, "output:\n  dir: ignored\n")
	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/training", cfg.Output.Dir)
	assert.Equal(t, 250, cfg.Ingest.MinObservations)
	assert.Equal(t, uint64(99), cfg.Ingest.Seed)
	assert.Equal(t, 3*time.Second, cfg.RateLimit.Delay)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_ZeroDelayIsKept(t *testing.T) {
	path := writeTempFile(t, "rate_limit:\n  delay: 0s\n")
	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.RateLimit.Delay)

	path = writeTempFile(t, "rate_limit:\n  strategy: fixed\n")
	cfg, err = LoadAndValidate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRateLimitDelay, cfg.RateLimit.Delay)

	t.Setenv("LINEUP_RATE_LIMIT_DELAY", "0s")
	cfg, err = LoadAndValidate(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.RateLimit.Delay)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("LINEUP_SAMPLE_SIZE", "ten")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "LINEUP_SAMPLE_SIZE")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeTempFile(t, "output: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"min observations", func(c *Config) { c.Ingest.MinObservations = -1 }, "ingest.min_observations"},
		{"lookback", func(c *Config) { c.Ingest.LookbackDays = -5 }, "ingest.lookback_days"},
		{"sample size", func(c *Config) { c.Ingest.SampleSize = -1 }, "ingest.sample_size"},
		{"strategy", func(c *Config) { c.RateLimit.Strategy = "exponential" }, "rate_limit.strategy"},
		{"delay", func(c *Config) { c.RateLimit.Delay = -time.Second }, "rate_limit.delay"},
		{"category start", func(c *Config) { c.Ingest.CategoryStart["crypto"] = "2017/01/01" }, "ingest.category_start.crypto"},
		{"telegram", func(c *Config) { c.Telegram.BotToken = "tok" }, "telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
