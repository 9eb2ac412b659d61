package model

import "time"

// DateLayout is the date format used in persisted series.
const DateLayout = "2006-01-02"

// ColumnLabel is a provider column label. Single-instrument responses carry
// one component ("Close"); multi-instrument responses carry composite
// labels such as {"Close", "AAPL"}.
type ColumnLabel []string

// RawRow is a single provider observation.
// Time is used when set, otherwise Date is parsed. A row with neither has no date.
type RawRow struct {
	Time   time.Time
	Date   string
	Values []float64
}

// RawSeries holds the provider response for one fetch call.
type RawSeries struct {
	Symbol  string
	Columns []ColumnLabel
	Rows    []RawRow
}

// Len returns the number of observations.
func (r *RawSeries) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}
