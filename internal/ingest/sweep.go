// Package ingest drives series acquisition: the bulk sweep over the
// instrument registry and the interactive one-symbol-at-a-time loop.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"time"

	"PriceLineup/internal/collector"
	"PriceLineup/internal/model"
	"PriceLineup/internal/normalize"
	"PriceLineup/internal/ratelimit"
	"PriceLineup/internal/registry"
	"PriceLineup/internal/store"
)

// DefaultLookbackDays is the default history window of a sweep (10 years).
const DefaultLookbackDays = 365 * 10

// Persister writes an accepted series under a key.
type Persister interface {
	Save(key string, series model.Series) error
}

// Sweeper runs the bulk sweep. Categories are visited in registry order and
// symbols in category order; one symbol is processed at a time.
type Sweeper struct {
	Registry *registry.Registry
	Fetcher  collector.Fetcher
	Limiter  ratelimit.Limiter
	Store    Persister

	MinObservations int
	SampleSize      int // 0 fetches every symbol
	Rand            *rand.Rand

	LookbackDays  int
	CategoryStart map[string]time.Time

	Now    func() time.Time
	Logger *log.Logger
	Out    io.Writer // per-symbol confirmations; nil discards
}

func (s *Sweeper) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func (s *Sweeper) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return io.Discard
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// StartFor returns the fetch start date of a category: its configured
// override, or the lookback window before today.
func (s *Sweeper) StartFor(category string) time.Time {
	if start, ok := s.CategoryStart[category]; ok {
		return start
	}
	days := s.LookbackDays
	if days <= 0 {
		days = DefaultLookbackDays
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days)
}

// Symbols returns the symbols of a category visited by the sweep.
func (s *Sweeper) Symbols(cat registry.Category) []string {
	if s.SampleSize > 0 {
		return Select(cat.Symbols, s.SampleSize, s.Rand)
	}
	return cat.Symbols
}

// Run sweeps every category and returns one outcome per visited symbol, in
// visiting order. Per-symbol failures become Failed outcomes and never stop
// the sweep. Cancellation is honored between symbols and while waiting on
// the limiter; the outcomes gathered so far are returned with ctx.Err().
func (s *Sweeper) Run(ctx context.Context) ([]model.Outcome, error) {
	if s.Registry == nil || s.Fetcher == nil || s.Store == nil {
		return nil, fmt.Errorf("sweep: registry, fetcher and store are required")
	}
	limiter := s.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	minObs := s.MinObservations
	if minObs <= 0 {
		minObs = DefaultMinObservations
	}

	var outcomes []model.Outcome
	for _, cat := range s.Registry.Categories() {
		symbols := s.Symbols(cat)
		start := s.StartFor(cat.Name)
		fmt.Fprintf(s.out(), "✨ Fetching %d tickers for category: %s\n", len(symbols), cat.Name)
		s.logger().Printf("[INFO] sweep category=%s symbols=%d start=%s", cat.Name, len(symbols), start.Format(model.DateLayout))

		for _, sym := range symbols {
			if err := ctx.Err(); err != nil {
				return outcomes, err
			}
			outcome, err := s.process(ctx, limiter, cat.Name, sym, start, minObs)
			if err != nil {
				return outcomes, err
			}
			outcomes = append(outcomes, outcome)
			s.report(outcome)
		}
	}
	return outcomes, nil
}

// process moves one symbol through
// Start -> RateLimited -> Fetched -> Normalized -> Accepted|Rejected.
// The error is non-nil only when ctx ended while waiting on the limiter.
func (s *Sweeper) process(ctx context.Context, limiter ratelimit.Limiter, category, symbol string, start time.Time, minObs int) (model.Outcome, error) {
	if err := limiter.Wait(ctx); err != nil {
		return model.Outcome{}, err
	}

	raw, err := s.Fetcher.FetchSeries(ctx, symbol, start)
	if err != nil {
		return model.Failed(category, symbol, model.StageRateLimited, err), nil
	}

	series, err := normalize.Normalize(raw)
	if err != nil {
		return model.Failed(category, symbol, model.StageFetched, err), nil
	}
	series.Symbol = symbol

	if !Accept(series, minObs) {
		return model.Skipped(category, symbol, series.Len(), minObs), nil
	}

	key := store.BulkKey(category, symbol)
	if err := s.Store.Save(key, series); err != nil {
		return model.Failed(category, symbol, model.StageAccepted, err), nil
	}
	return model.Saved(category, symbol, key, series.Len()), nil
}

func (s *Sweeper) report(o model.Outcome) {
	fmt.Fprintln(s.out(), o.String())
	switch o.Status {
	case model.StatusFailed:
		s.logger().Printf("[WARN] %s (%s) failed at %s: %v", o.Symbol, o.Category, o.Stage, o.Err)
	case model.StatusSkippedLowQuality:
		s.logger().Printf("[INFO] %s (%s) skipped: %s", o.Symbol, o.Category, o.Detail)
	default:
		s.logger().Printf("[INFO] %s (%s) %s", o.Symbol, o.Category, o.Detail)
	}
}
