package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Output struct {
		Dir            string `yaml:"dir"`
		InteractiveDir string `yaml:"interactive_dir"`
	} `yaml:"output"`
	Ingest struct {
		LookbackDays    int               `yaml:"lookback_days"`
		CategoryStart   map[string]string `yaml:"category_start"`
		MinObservations int               `yaml:"min_observations"`
		SampleSize      int               `yaml:"sample_size"`
		Seed            uint64            `yaml:"seed"`
	} `yaml:"ingest"`
	RateLimit struct {
		Strategy string        `yaml:"strategy"`
		Delay    time.Duration `yaml:"delay"`
	} `yaml:"rate_limit"`
	DataSource struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	RegistryPath string `yaml:"registry_path"`
	Schedule     struct {
		SweepCron string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, expands ${VAR} references, then
// applies environment variable overrides and defaults. A missing file
// yields the defaults. rate_limit.delay is preset so an explicit 0 survives.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.RateLimit.Delay = DefaultRateLimitDelay

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Environment variable overrides
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LINEUP_OUTPUT_DIR":      &c.Output.Dir,
		"LINEUP_INTERACTIVE_DIR": &c.Output.InteractiveDir,
		"LINEUP_DATA_SOURCE_URL": &c.DataSource.BaseURL,
		"LINEUP_DATA_SOURCE_KEY": &c.DataSource.APIKey,
		"LINEUP_REGISTRY":        &c.RegistryPath,
		"CRON_SWEEP":             &c.Schedule.SweepCron,
		"SQLITE_PATH":            &c.Database.SQLitePath,
		"TELEGRAM_BOT_TOKEN":     &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":       &c.Telegram.ChatID,
		"HTTPS_PROXY":            &c.Proxy,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LINEUP_LOOKBACK_DAYS":    &c.Ingest.LookbackDays,
		"LINEUP_MIN_OBSERVATIONS": &c.Ingest.MinObservations,
		"LINEUP_SAMPLE_SIZE":      &c.Ingest.SampleSize,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("LINEUP_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LINEUP_SEED: %w", err)
		}
		c.Ingest.Seed = seed
	}
	if v := os.Getenv("LINEUP_RATE_LIMIT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LINEUP_RATE_LIMIT_DELAY: %w", err)
		}
		c.RateLimit.Delay = d
	}
	return nil
}

// CategoryStarts parses the per-category start date overrides.
func (c *Config) CategoryStarts() (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(c.Ingest.CategoryStart))
	for name, v := range c.Ingest.CategoryStart {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("ingest.category_start.%s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// TelegramEnabled reports whether sweep reports should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
