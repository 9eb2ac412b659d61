// Package normalize turns provider responses into JSON-safe series.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"PriceLineup/internal/model"
)

var (
	ErrMissingDate     = errors.New("missing date")
	ErrDateOrder       = errors.New("dates must be strictly increasing")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrRowWidth        = errors.New("row width does not match columns")
)

// dateLayouts are tried in order for textual dates.
var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
}

// FlattenLabel joins the components of a composite label with "_".
// Components are trimmed and empty ones dropped, so {"Close", "AAPL"}
// becomes "Close_AAPL" and {" Close ", ""} becomes "Close".
func FlattenLabel(label model.ColumnLabel) string {
	parts := make([]string, 0, len(label))
	for _, p := range label {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "_"))
}

// Normalize converts a raw provider response into a Series: flat column
// names, one record per observation, dates as YYYY-MM-DD in the original order.
// An empty response yields an empty series.
func Normalize(raw *model.RawSeries) (model.Series, error) {
	if raw == nil {
		return model.Series{}, nil
	}
	series := model.Series{Symbol: raw.Symbol}

	columns, err := flattenColumns(raw.Columns)
	if err != nil {
		return series, err
	}
	series.Columns = columns
	if len(raw.Rows) == 0 {
		return series, nil
	}

	records := make([]model.Record, 0, len(raw.Rows))
	prev := ""
	for i, row := range raw.Rows {
		if len(row.Values) != len(columns) {
			return series, fmt.Errorf("row %d: %w (%d values, %d columns)", i, ErrRowWidth, len(row.Values), len(columns))
		}
		date, err := formatDate(i, row)
		if err != nil {
			return series, err
		}
		if prev != "" && date <= prev {
			return series, &model.MalformedDateError{Index: i, Value: date, Err: ErrDateOrder}
		}
		prev = date

		fields := make(map[string]float64, len(columns))
		for j, c := range columns {
			fields[c] = row.Values[j]
		}
		records = append(records, model.Record{Date: date, Fields: fields})
	}
	series.Records = records
	return series, nil
}

func flattenColumns(labels []model.ColumnLabel) ([]string, error) {
	columns := make([]string, len(labels))
	seen := make(map[string]bool, len(labels))
	for i, l := range labels {
		name := FlattenLabel(l)
		if name == "" {
			return nil, fmt.Errorf("column %d: empty label", i)
		}
		if name == model.DateField || seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns, nil
}

func formatDate(i int, row model.RawRow) (string, error) {
	if !row.Time.IsZero() {
		return row.Time.Format(model.DateLayout), nil
	}
	s := strings.TrimSpace(row.Date)
	if s == "" {
		return "", &model.MalformedDateError{Index: i, Err: ErrMissingDate}
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Format(model.DateLayout), nil
		}
		lastErr = err
	}
	return "", &model.MalformedDateError{Index: i, Value: row.Date, Err: lastErr}
}
