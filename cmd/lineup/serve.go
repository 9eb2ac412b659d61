package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
)

type serveCmd struct {
	opts       sweepOptions
	runOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "runs sweeps on the configured cron schedule" }
func (*serveCmd) Usage() string {
	return `lineup serve [-run-on-start] [sweep flags]

Runs the bulk sweep on schedule.sweep_cron (six fields, seconds first) until
interrupted. Overlapping runs are skipped. With Telegram configured, reports
are sent to the chat and the chat commands /sweep, /runs and /status are
answered.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	c.opts.setFlags(f)
	f.BoolVar(&c.runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "Run a sweep immediately (RUN_ON_START)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log.Println("[INFO] PriceLineup starting...")
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return subcommands.ExitFailure
	}
	if cfg.Schedule.SweepCron == "" {
		fmt.Fprintln(os.Stderr, "Error: schedule.sweep_cron (CRON_SWEEP) is required")
		return subcommands.ExitUsageError
	}

	sw, release, err := newSweeper(cfg, c.opts)
	if err != nil {
		log.Printf("[FATAL] init sweeper: %v", err)
		return subcommands.ExitFailure
	}
	defer release()

	rec := openRecorder(cfg)
	defer rec.Close()

	sched := newScheduler(ctx, cfg, sw, rec)
	if err := sched.Register(cfg.Schedule.SweepCron); err != nil {
		log.Printf("[FATAL] register cron tasks: %v", err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if tn := newNotifier(cfg); tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if c.runOnStart {
		log.Println("[INFO] run-on-start enabled, executing sweep now")
		if err := sched.Go("start"); err != nil {
			log.Printf("[ERROR] run-on-start: %v", err)
		}
	}

	log.Println("[INFO] PriceLineup is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return subcommands.ExitSuccess
}
