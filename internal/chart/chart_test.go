package chart

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLineup/internal/collector"
	"PriceLineup/internal/model"
	"PriceLineup/internal/normalize"
)

func series(t *testing.T, n int) model.Series {
	t.Helper()
	raw := collector.GenerateSeries(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n, 100)
	raw.Symbol = "SPY"
	s, err := normalize.Normalize(raw)
	require.NoError(t, err)
	return s
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "▁▄█", Sparkline([]float64{1, 2, 3}))
	assert.Equal(t, "▄▄", Sparkline([]float64{5, 5}))
}

func TestMarkdown(t *testing.T) {
	md := Markdown(series(t, 260), 40)
	assert.Contains(t, md, "# SPY")
	assert.Contains(t, md, "260 records, 2024-01-01 to 2024-09-16")
	assert.Contains(t, md, "| SMA50 |")
	assert.Contains(t, md, "| SMA200 |")
	assert.Contains(t, md, "| RSI14 |")
	assert.Contains(t, md, "| 52w range |")
}

func TestMarkdown_ShortSeries(t *testing.T) {
	md := Markdown(series(t, 5), 40)
	assert.Contains(t, md, "5 records")
	assert.NotContains(t, md, "SMA50")
	assert.NotContains(t, md, "RSI14")

	assert.Contains(t, Markdown(model.Series{Symbol: "NONE"}, 40), "no observations")
}

func TestMarkdown_Downsamples(t *testing.T) {
	md := Markdown(series(t, 500), 30)
	for _, line := range strings.Split(md, "\n") {
		if utf8.RuneCountInString(line) > 0 && []rune(line)[0] >= '▁' && []rune(line)[0] <= '█' {
			assert.Equal(t, 30, utf8.RuneCountInString(line))
			return
		}
	}
	t.Fatal("no sparkline found")
}

func TestRenderer(t *testing.T) {
	r, err := New("notty", 80)
	require.NoError(t, err)
	out, err := r.Render(series(t, 30))
	require.NoError(t, err)
	assert.Contains(t, out, "SPY")
	assert.Contains(t, out, "Last close")

	out, err = r.RenderMarkdown("| Category | Symbols |\n|---|---|\n| bonds | 12 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "bonds")

	_, err = New("no-such-style", 80)
	assert.Error(t, err)
}
