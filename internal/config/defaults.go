package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultOutputDir       = "data/training"
	DefaultInteractiveDir  = "lineup"
	DefaultLookbackDays    = 365 * 10
	DefaultMinObservations = 100
	DefaultRateLimit       = "fixed"
	DefaultRateLimitDelay  = 2 * time.Second
	DefaultTimeout         = 30 * time.Second
	DefaultSQLitePath      = "data/lineup.db"
	DefaultCryptoStart     = "2017-01-01"
)

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.InteractiveDir == "" {
		c.Output.InteractiveDir = DefaultInteractiveDir
	}

	if c.Ingest.LookbackDays == 0 {
		c.Ingest.LookbackDays = DefaultLookbackDays
	}
	if c.Ingest.MinObservations == 0 {
		c.Ingest.MinObservations = DefaultMinObservations
	}
	if c.Ingest.CategoryStart == nil {
		c.Ingest.CategoryStart = map[string]string{"crypto": DefaultCryptoStart}
	}

	if c.RateLimit.Strategy == "" {
		c.RateLimit.Strategy = DefaultRateLimit
	}

	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = DefaultTimeout
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = DefaultSQLitePath
	}
}
