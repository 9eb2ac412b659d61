package config

import (
	"errors"
	"fmt"
)

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	if c.Output.InteractiveDir == "" {
		return errors.New("output.interactive_dir is required")
	}
	if c.Ingest.LookbackDays < 1 {
		return errors.New("ingest.lookback_days must be >= 1")
	}
	if c.Ingest.MinObservations < 1 {
		return errors.New("ingest.min_observations must be >= 1")
	}
	if c.Ingest.SampleSize < 0 {
		return errors.New("ingest.sample_size must be >= 0")
	}
	if _, err := c.CategoryStarts(); err != nil {
		return err
	}

	switch c.RateLimit.Strategy {
	case "fixed", "token_bucket", "none":
	default:
		return fmt.Errorf("rate_limit.strategy %q is not one of fixed, token_bucket, none", c.RateLimit.Strategy)
	}
	if c.RateLimit.Delay < 0 {
		return errors.New("rate_limit.delay must be >= 0")
	}
	if c.DataSource.Timeout <= 0 {
		return errors.New("data_source.timeout must be positive")
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
