package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"PriceLineup/internal/scheduler"
)

type sweepCmd struct {
	opts sweepOptions
}

func (*sweepCmd) Name() string     { return "sweep" }
func (*sweepCmd) Synopsis() string { return "downloads every registry symbol into the training set" }
func (*sweepCmd) Usage() string {
	return `lineup sweep [-category a,b] [-sample N] [-seed S] [-dir path] [-reset]

Walks the instrument registry category by category and symbol by symbol,
pausing between provider calls. Series with fewer observations than
ingest.min_observations are skipped; the rest are saved as
<category>_<symbol>.json. A failing symbol is reported and the sweep moves on.

The run summary is printed, stored in the SQLite history and, when Telegram
is configured, sent to the chat. Ctrl+C stops between two symbols.
`
}

func (c *sweepCmd) SetFlags(f *flag.FlagSet) { c.opts.setFlags(f) }

func (c *sweepCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	sw, release, err := newSweeper(cfg, c.opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	rec := openRecorder(cfg)
	defer rec.Close()

	sched := newScheduler(ctx, cfg, sw, rec)
	sum, err := sched.RunNow("cli")
	if errors.Is(err, scheduler.ErrBusy) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("\nSweep %s: %d saved (%d records), %d skipped, %d failed\n",
		sum.ID, sum.Saved, sum.Records, sum.Skipped, sum.Failed)
	for _, cs := range sum.Categories {
		fmt.Printf("  %-12s saved %d, skipped %d, failed %d\n", cs.Category, cs.Saved, cs.Skipped, cs.Failed)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep interrupted: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
