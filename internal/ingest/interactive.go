package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"PriceLineup/internal/collector"
	"PriceLineup/internal/model"
	"PriceLineup/internal/normalize"
	"PriceLineup/internal/store"
)

// Sentinel ends the interactive loop, compared case-insensitively.
const Sentinel = "done"

// Renderer draws a series for visual inspection.
type Renderer interface {
	Render(series model.Series) (string, error)
}

// Interactive acquires one operator-entered symbol at a time. There is no
// rate limiter and no quality gate: any non-empty series is saved.
type Interactive struct {
	Fetcher  collector.Fetcher
	Store    Persister
	Renderer Renderer // nil skips rendering
	Start    time.Time

	// Acknowledge blocks on an extra input line after each chart.
	Acknowledge bool

	Logger *log.Logger
	Out    io.Writer
}

func (l *Interactive) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l *Interactive) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return io.Discard
}

// Run reads symbols line by line from in until the sentinel, end of input or
// cancellation. Blank lines are ignored and symbols are upper-cased. Errors
// are reported per symbol and the loop keeps going. Cancellation is noticed
// while waiting for input; a symbol interrupted before its save leaves no
// outcome and no file.
func (l *Interactive) Run(ctx context.Context, in io.Reader) ([]model.Outcome, error) {
	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	var outcomes []model.Outcome
	for {
		fmt.Fprintf(l.out(), "Enter a ticker symbol (or '%s' to finish): ", Sentinel)
		line, ok, err := lines.next(ctx)
		if err != nil || !ok {
			fmt.Fprintln(l.out())
			return outcomes, err
		}
		line = strings.TrimSpace(line)
		if isSentinel(line) {
			fmt.Fprintln(l.out(), "🎉 All done!")
			return outcomes, nil
		}
		if line == "" {
			continue
		}

		symbol := strings.ToUpper(line)
		var finished, eof bool
		var ack func() error
		if l.Acknowledge {
			ack = func() error {
				fmt.Fprintf(l.out(), "Press Enter to save and continue (or '%s' to save and finish)...", Sentinel)
				reply, ok, err := lines.next(ctx)
				if err != nil {
					return err
				}
				eof = !ok
				finished = ok && isSentinel(strings.TrimSpace(reply))
				return nil
			}
		}
		o, err := l.acquire(ctx, symbol, ack)
		if err != nil {
			fmt.Fprintln(l.out())
			return outcomes, err
		}
		outcomes = append(outcomes, o)
		switch {
		case finished:
			fmt.Fprintln(l.out(), "🎉 All done!")
			return outcomes, nil
		case eof:
			return outcomes, nil
		}
	}
}

// Acquire fetches, renders and saves one symbol without prompting.
func (l *Interactive) Acquire(ctx context.Context, symbol string) model.Outcome {
	o, _ := l.acquire(ctx, strings.ToUpper(strings.TrimSpace(symbol)), nil)
	return o
}

// acquire returns an error only when ack was interrupted.
func (l *Interactive) acquire(ctx context.Context, symbol string, ack func() error) (model.Outcome, error) {
	o, err := l.process(ctx, symbol, ack)
	if err != nil {
		l.logger().Printf("[INFO] %s interrupted before save: %v", symbol, err)
		return o, err
	}
	fmt.Fprintln(l.out(), o.String())
	if o.Status == model.StatusFailed {
		l.logger().Printf("[WARN] %s failed at %s: %v", symbol, o.Stage, o.Err)
	} else {
		l.logger().Printf("[INFO] %s %s", symbol, o.Detail)
	}
	return o, nil
}

func (l *Interactive) process(ctx context.Context, symbol string, ack func() error) (model.Outcome, error) {
	fmt.Fprintf(l.out(), "📥 Downloading %s...\n", symbol)
	raw, err := l.Fetcher.FetchSeries(ctx, symbol, l.Start)
	if err != nil {
		return model.Failed("", symbol, model.StageStart, err), nil
	}

	series, err := normalize.Normalize(raw)
	if err != nil {
		return model.Failed("", symbol, model.StageFetched, err), nil
	}
	series.Symbol = symbol
	if series.Len() == 0 {
		return model.Failed("", symbol, model.StageNormalized, model.ErrEmptyResult), nil
	}

	if l.Renderer != nil {
		chart, err := l.Renderer.Render(series)
		if err != nil {
			l.logger().Printf("[WARN] render %s: %v", symbol, err)
		} else {
			fmt.Fprint(l.out(), chart)
		}
		if ack != nil {
			if err := ack(); err != nil {
				return model.Outcome{}, err
			}
		}
	}

	key := store.SymbolKey(symbol)
	if err := l.Store.Save(key, series); err != nil {
		return model.Failed("", symbol, model.StageAccepted, err), nil
	}
	return model.Saved("", symbol, key, series.Len()), nil
}

func isSentinel(line string) bool {
	return strings.EqualFold(line, Sentinel)
}

// lineReader delivers input lines over a channel so a blocked read never
// holds up cancellation.
type lineReader struct {
	lines chan string
	err   error // set before lines is closed
}

func readLines(in io.Reader, done <-chan struct{}) *lineReader {
	lr := &lineReader{lines: make(chan string)}
	go func() {
		defer close(lr.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lr.lines <- scanner.Text():
			case <-done:
				return
			}
		}
		lr.err = scanner.Err()
	}()
	return lr
}

// next waits for the next line. ok is false at end of input.
func (lr *lineReader) next(ctx context.Context) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-lr.lines:
		if !ok {
			return "", false, lr.err
		}
		return line, true, nil
	}
}
