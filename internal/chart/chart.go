// Package chart renders a series as a terminal summary for visual inspection.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"PriceLineup/internal/calculator"
	"PriceLineup/internal/model"
)

const (
	DefaultWidth  = 80
	DefaultPoints = 60
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Renderer turns a series into styled terminal text through glamour.
type Renderer struct {
	Points int
	tr     *glamour.TermRenderer
}

// New creates a renderer. An empty style picks dark or light from the
// terminal and falls back to plain text when stdout is not a terminal.
func New(style string, width int) (*Renderer, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &Renderer{Points: DefaultPoints, tr: tr}, nil
}

// Render draws the close history and a few indicators of the series.
func (r *Renderer) Render(series model.Series) (string, error) {
	return r.tr.Render(Markdown(series, r.Points))
}

// RenderMarkdown renders an arbitrary markdown document with the same style.
func (r *Renderer) RenderMarkdown(md string) (string, error) {
	return r.tr.Render(md)
}

// Markdown builds the summary document rendered by Render.
func Markdown(series model.Series, points int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", series.Symbol)
	if series.Len() == 0 {
		b.WriteString("_no observations_\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d records, %s to %s\n\n", series.Len(), series.FirstDate(), series.LastDate())

	raw, ok := series.Column("Close")
	if !ok {
		b.WriteString("_no close prices_\n")
		return b.String()
	}
	closes := calculator.Finite(raw)
	if len(closes) == 0 {
		b.WriteString("_no close prices_\n")
		return b.String()
	}

	fmt.Fprintf(&b, "```\n%s\n```\n\n", Sparkline(calculator.Downsample(closes, points)))

	last := closes[len(closes)-1]
	b.WriteString("| Indicator | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Last close | %.2f |\n", last)
	if high, low, err := calculator.CalculateRange(closes, 0); err == nil {
		fmt.Fprintf(&b, "| All-time range | %.2f - %.2f |\n", low, high)
	}
	if high, low, err := calculator.CalculateRange(closes, calculator.TradingDaysPerYear); err == nil {
		pos, _ := calculator.CalculatePosition(last, high, low)
		fmt.Fprintf(&b, "| 52w range | %.2f - %.2f (%.0f%%) |\n", low, high, pos*100)
	}
	for _, period := range []int{50, 200} {
		if sma, err := calculator.CalculateSMA(closes, period); err == nil {
			fmt.Fprintf(&b, "| SMA%d | %.2f |\n", period, sma)
		}
	}
	if rsi, err := calculator.CalculateRSI(closes, 14); err == nil && len(closes) > 14 {
		fmt.Fprintf(&b, "| RSI14 | %.1f |\n", rsi)
	}
	return b.String()
}

// Sparkline draws values as a row of block characters scaled between their
// minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	high, low, _ := calculator.CalculateRange(values, 0)
	top := len(sparkRunes) - 1
	var b strings.Builder
	for _, v := range values {
		idx := top / 2
		if high > low {
			idx = int((v - low) / (high - low) * float64(top))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
