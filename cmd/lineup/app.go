package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strings"

	"PriceLineup/internal/collector"
	"PriceLineup/internal/config"
	"PriceLineup/internal/ingest"
	"PriceLineup/internal/notifier"
	"PriceLineup/internal/ratelimit"
	"PriceLineup/internal/recorder"
	"PriceLineup/internal/registry"
	"PriceLineup/internal/scheduler"
	"PriceLineup/internal/store"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML config file (CONFIG_PATH)")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/lineup.yaml"
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", *configPath, err)
	}
	return cfg, nil
}

// newFetcher picks the REST bars API when a base URL is configured, Yahoo otherwise.
func newFetcher(cfg *config.Config) collector.Fetcher {
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	return fetcher
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newNotifier(cfg *config.Config) *notifier.TelegramNotifier {
	if !cfg.TelegramEnabled() {
		return nil
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

// sweepOptions are the command-line overrides shared by sweep and serve.
type sweepOptions struct {
	categories string
	sample     int
	seed       uint64
	dir        string
	reset      bool
}

func (o *sweepOptions) setFlags(f *flag.FlagSet) {
	f.StringVar(&o.categories, "category", "", "Comma-separated categories to sweep (default: all)")
	f.IntVar(&o.sample, "sample", -1, "Symbols drawn at random per category, 0 for all (default: config)")
	f.Uint64Var(&o.seed, "seed", 0, "Seed of the sampling source (default: config, 0 is random)")
	f.StringVar(&o.dir, "dir", "", "Output directory (default: config output.dir)")
	f.BoolVar(&o.reset, "reset", false, "Delete and recreate the output directory before sweeping")
}

// newSweeper wires a bulk sweep from config. The returned func releases the limiter.
func newSweeper(cfg *config.Config, opts sweepOptions) (*ingest.Sweeper, func(), error) {
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return nil, nil, err
	}
	if names := splitList(opts.categories); len(names) > 0 {
		if reg, err = reg.Only(names...); err != nil {
			return nil, nil, err
		}
	}

	dir := cfg.Output.Dir
	if opts.dir != "" {
		dir = opts.dir
	}
	if err := store.PrepareOutputLocation(dir, opts.reset); err != nil {
		return nil, nil, err
	}

	limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.Delay)
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if tb, ok := limiter.(*ratelimit.TokenBucket); ok {
		release = tb.Stop
	}

	starts, err := cfg.CategoryStarts()
	if err != nil {
		release()
		return nil, nil, err
	}

	sample := cfg.Ingest.SampleSize
	if opts.sample >= 0 {
		sample = opts.sample
	}
	seed := cfg.Ingest.Seed
	if opts.seed != 0 {
		seed = opts.seed
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	return &ingest.Sweeper{
		Registry:        reg,
		Fetcher:         newFetcher(cfg),
		Limiter:         limiter,
		Store:           store.NewJSONStore(dir),
		MinObservations: cfg.Ingest.MinObservations,
		SampleSize:      sample,
		Rand:            rng,
		LookbackDays:    cfg.Ingest.LookbackDays,
		CategoryStart:   starts,
		Out:             os.Stdout,
	}, release, nil
}

// newScheduler wraps a sweeper with recording and Telegram reports.
func newScheduler(ctx context.Context, cfg *config.Config, sw *ingest.Sweeper, rec recorder.Recorder) *scheduler.Scheduler {
	var n scheduler.Notifier
	if tn := newNotifier(cfg); tn != nil {
		n = tn
	}
	return scheduler.NewScheduler(ctx, sw, n, rec)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
