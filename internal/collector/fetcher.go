package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"PriceLineup/internal/model"
)

// Fetcher retrieves daily history for a symbol starting at a date.
// No data for the range is an empty series, not an error; remote
// failures are returned as *model.ProviderError.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, start time.Time) (*model.RawSeries, error)
	Name() string
}

// ohlcvColumns is the column order of single-symbol responses.
var ohlcvColumns = []string{"Close", "High", "Low", "Open", "Volume"}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func flatColumns(names []string) []model.ColumnLabel {
	cols := make([]model.ColumnLabel, len(names))
	for i, n := range names {
		cols[i] = model.ColumnLabel{n}
	}
	return cols
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
