// Command lineup acquires daily price series from a market data provider,
// either interactively one symbol at a time or as a bulk sweep over the
// instrument registry.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&fetchCmd{}, "acquisition")
	commander.Register(&sweepCmd{}, "acquisition")
	commander.Register(&serveCmd{}, "acquisition")
	commander.Register(&categoriesCmd{}, "inspection")
	commander.Register(&runsCmd{}, "inspection")

	flag.Parse()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
