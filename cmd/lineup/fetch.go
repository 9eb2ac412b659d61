package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"

	"PriceLineup/internal/chart"
	"PriceLineup/internal/ingest"
	"PriceLineup/internal/model"
	"PriceLineup/internal/store"
)

type fetchCmd struct {
	symbols string
	start   string
	dir     string
	reset   bool
	style   string
	noAck   bool
}

func (*fetchCmd) Name() string { return "fetch" }
func (*fetchCmd) Synopsis() string {
	return "downloads symbols one at a time with a chart to validate each"
}
func (*fetchCmd) Usage() string {
	return `lineup fetch [-symbols A,B] [-start YYYY-MM-DD] [-reset]

Without -symbols, reads ticker symbols from standard input one line at a time.
Each series is downloaded, drawn as a terminal chart for a quick visual check,
and saved as <symbol>.json in the interactive output directory. Type 'done'
to finish.

With -symbols, the listed symbols are fetched and saved without prompting.

There is no minimum-length check here: any non-empty series is saved.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "Comma-separated symbols to fetch without prompting")
	f.StringVar(&c.start, "start", "", "First date to fetch, YYYY-MM-DD (default: lookback window)")
	f.StringVar(&c.dir, "dir", "", "Output directory (default: config output.interactive_dir)")
	f.BoolVar(&c.reset, "reset", false, "Delete and recreate the output directory first")
	f.StringVar(&c.style, "style", "", "Chart style: dark, light, notty... (default: detect)")
	f.BoolVar(&c.noAck, "no-ack", false, "Do not wait for Enter after each chart")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	start := time.Now().UTC().AddDate(0, 0, -cfg.Ingest.LookbackDays)
	if c.start != "" {
		if start, err = time.Parse(model.DateLayout, c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -start %q: %v\n", c.start, err)
			return subcommands.ExitUsageError
		}
	}

	dir := cfg.Output.InteractiveDir
	if c.dir != "" {
		dir = c.dir
	}
	if err := store.PrepareOutputLocation(dir, c.reset); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	renderer, err := chart.New(c.style, chart.DefaultWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	loop := &ingest.Interactive{
		Fetcher:     newFetcher(cfg),
		Store:       store.NewJSONStore(dir),
		Renderer:    renderer,
		Start:       start,
		Acknowledge: !c.noAck,
		Out:         os.Stdout,
	}

	if symbols := splitList(c.symbols); len(symbols) > 0 {
		loop.Renderer = nil
		failed := 0
		for _, sym := range symbols {
			if ctx.Err() != nil {
				break
			}
			if o := loop.Acquire(ctx, sym); o.Status == model.StatusFailed {
				failed++
			}
		}
		if failed > 0 || ctx.Err() != nil {
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	fmt.Println("🧬✨ Flexible fetch mode ✨🧬")
	fmt.Println("Enter ticker symbols one at a time to build a custom universe.")
	fmt.Println("Each download is charted for a quick visual check before it is saved.")
	fmt.Printf("Files go to %s/. Type 'done' when finished.\n\n", dir)

	outcomes, err := loop.Run(ctx, os.Stdin)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[ERROR] interactive fetch: %v", err)
		return subcommands.ExitFailure
	}
	sum := model.Summarize(outcomes)
	fmt.Printf("Saved %d of %d symbols to %s/\n", sum.Saved, sum.Total(), dir)
	if err != nil {
		log.Println("[INFO] interrupted")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
