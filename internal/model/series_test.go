package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() Series {
	return Series{
		Symbol:  "BND",
		Columns: []string{"Close", "Open", "Volume"},
		Records: []Record{
			{Date: "2024-01-02", Fields: map[string]float64{"Close": 72.5, "Open": 72.1, "Volume": 1200}},
			{Date: "2024-01-03", Fields: map[string]float64{"Close": 72.9, "Open": math.NaN(), "Volume": 900}},
		},
	}
}

func TestSeriesMarshal_DateFirstAndNullForNaN(t *testing.T) {
	data, err := json.Marshal(sampleSeries())
	require.NoError(t, err)
	assert.Equal(t,
		`[{"Date":"2024-01-02","Close":72.5,"Open":72.1,"Volume":1200},`+
			`{"Date":"2024-01-03","Close":72.9,"Open":null,"Volume":900}]`,
		string(data))
}

func TestSeriesUnmarshal_KeepsColumnOrder(t *testing.T) {
	data, err := json.Marshal(sampleSeries())
	require.NoError(t, err)

	var got Series
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"Close", "Open", "Volume"}, got.Columns)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "2024-01-03", got.Records[1].Date)
	assert.True(t, math.IsNaN(got.Records[1].Fields["Open"]))
	assert.Equal(t, 72.9, got.Records[1].Fields["Close"])
}

func TestSeriesUnmarshal_RejectsNestedValues(t *testing.T) {
	var got Series
	err := json.Unmarshal([]byte(`[{"Date":"2024-01-02","Close":{"x":1}}]`), &got)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`[{"Date":20240102,"Close":1}]`), &got)
	assert.Error(t, err)
}

func TestSeriesEmptyMarshalsToEmptyArray(t *testing.T) {
	data, err := json.Marshal(Series{Symbol: "X"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSeriesColumn_ResolvesFlattenedLabels(t *testing.T) {
	s := Series{
		Columns: []string{"Close_AAPL", "Volume_AAPL"},
		Records: []Record{{Date: "2024-01-02", Fields: map[string]float64{"Close_AAPL": 190}}},
	}
	closes, ok := s.Column("Close")
	require.True(t, ok)
	assert.Equal(t, []float64{190}, closes)

	vol, ok := s.Column("Volume")
	require.True(t, ok)
	assert.True(t, math.IsNaN(vol[0]))

	_, ok = s.Column("High")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		Saved("bonds", "BND", "bonds_BND", 150),
		Skipped("bonds", "AGG", 5, 100),
		Failed("crypto", "PEPE-USD", StageRateLimited, ErrEmptyResult),
		Saved("crypto", "BTC-USD", "crypto_BTC-USD", 2000),
	}
	sum := Summarize(outcomes)
	assert.Equal(t, 2, sum.Saved)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2150, sum.Records)
	require.Len(t, sum.Categories, 2)
	assert.Equal(t, CategorySummary{Category: "bonds", Saved: 1, Skipped: 1}, sum.Categories[0])
	assert.Equal(t, 2, sum.Categories[1].Total())
}

func TestOutcomeString(t *testing.T) {
	assert.Contains(t, Saved("bonds", "BND", "bonds_BND", 150).String(), "BND (bonds)")
	assert.Contains(t, Saved("bonds", "BND", "bonds_BND", 150).String(), "150")
	assert.Contains(t, Failed("", "XYZ", StageRateLimited, ErrEmptyResult).String(), "XYZ")
	assert.Contains(t, Failed("", "XYZ", StageRateLimited, ErrEmptyResult).String(), "empty result")
}
