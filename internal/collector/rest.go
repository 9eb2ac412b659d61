package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PriceLineup/internal/model"
)

// RESTFetcher implements Fetcher against a daily bars REST API:
//
//	GET {BaseURL}/api/v1/bars/daily?symbol=AAPL&from=2015-01-02
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchSeries(ctx context.Context, symbol string, start time.Time) (*model.RawSeries, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", start.Format(model.DateLayout))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, f.fail(symbol, err)
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, f.fail(symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &model.RawSeries{Symbol: symbol, Columns: flatColumns(ohlcvColumns)}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, f.fail(symbol, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200)))
	}
	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, f.fail(symbol, fmt.Errorf("decode bars: %w", err))
	}

	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })

	raw := &model.RawSeries{Symbol: symbol, Columns: flatColumns(ohlcvColumns)}
	for _, b := range bars {
		raw.Rows = append(raw.Rows, model.RawRow{
			Time:   startOfDay(time.Unix(b.Timestamp, 0).UTC()),
			Values: []float64{b.Close, b.High, b.Low, b.Open, b.Volume},
		})
	}
	raw.Rows = dedupeDays(raw.Rows)
	return raw, nil
}

func (f *RESTFetcher) fail(symbol string, err error) error {
	return &model.ProviderError{Provider: f.Name(), Symbol: symbol, Err: err}
}
