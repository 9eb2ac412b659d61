package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"PriceLineup/internal/chart"
	"PriceLineup/internal/registry"
)

type categoriesCmd struct {
	verbose bool
	style   string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "lists the registry categories swept in bulk" }
func (*categoriesCmd) Usage() string {
	return `lineup categories [-v]

Lists the categories of the instrument registry (registry_path, or the built-in
table) with their symbol counts and the number of repeated symbols dropped
while loading.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "Also list the symbols of each category")
	f.StringVar(&c.style, "style", "", "Output style: dark, light, notty... (default: detect)")
}

func (c *categoriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := chart.New(c.style, chart.DefaultWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	out, err := r.RenderMarkdown(categoriesMarkdown(reg, c.verbose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

func categoriesMarkdown(reg *registry.Registry, verbose bool) string {
	var b strings.Builder
	b.WriteString("| Category | Symbols | Duplicates |\n|---|---:|---:|\n")
	for _, cat := range reg.Categories() {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", cat.Name, len(cat.Symbols), cat.Duplicates)
	}
	fmt.Fprintf(&b, "\n%d distinct symbols\n", reg.Len())
	if verbose {
		for _, cat := range reg.Categories() {
			fmt.Fprintf(&b, "\n**%s**: %s\n", cat.Name, strings.Join(cat.Symbols, ", "))
		}
	}
	return b.String()
}
