package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"PriceLineup/internal/chart"
	"PriceLineup/internal/model"
)

type runsCmd struct {
	limit int
	style string
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "shows the most recent sweep summaries" }
func (*runsCmd) Usage() string {
	return `lineup runs [-n 10]

Shows the latest sweeps recorded in the SQLite history (database.sqlite_path),
newest first.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "Number of runs to show")
	f.StringVar(&c.style, "style", "", "Output style: dark, light, notty... (default: detect)")
}

func (c *runsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	rec := openRecorder(cfg)
	defer rec.Close()

	runs, err := rec.RecentRuns(c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := chart.New(c.style, chart.DefaultWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	out, err := r.RenderMarkdown(runsMarkdown(runs))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

func runsMarkdown(runs []model.RunSummary) string {
	if len(runs) == 0 {
		return "_No sweeps recorded yet._\n"
	}
	var b strings.Builder
	b.WriteString("| Started | Mode | Saved | Skipped | Failed | Records | Duration |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
	for _, r := range runs {
		mode := r.Mode
		if r.Aborted {
			mode += " (aborted)"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %s |\n",
			r.StartedAt.Format("2006-01-02 15:04"), mode, r.Saved, r.Skipped, r.Failed, r.Records,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	return b.String()
}
