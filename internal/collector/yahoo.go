package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"PriceLineup/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
// Prices are split and dividend adjusted when the response carries adjclose.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Now       func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: defaultYahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Now: time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func (f *YahooFetcher) FetchSeries(ctx context.Context, symbol string, start time.Time) (*model.RawSeries, error) {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d&events=%s&includeAdjustedClose=true",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), start.Unix(), now().Unix(), url.QueryEscape("div,split"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, f.fail(symbol, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, f.fail(symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, f.fail(symbol, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		if desc := chartError(body); desc != "" {
			return nil, f.fail(symbol, fmt.Errorf("status %d: %s", resp.StatusCode, desc))
		}
		return nil, f.fail(symbol, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200)))
	}

	raw, err := parseChart(body)
	if err != nil {
		return nil, f.fail(symbol, err)
	}
	raw.Symbol = symbol
	return raw, nil
}

func (f *YahooFetcher) fail(symbol string, err error) error {
	return &model.ProviderError{Provider: f.Name(), Symbol: symbol, Err: err}
}

func chartError(body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return chartErrorFrom(doc)
}

// parseChart extracts daily rows from a chart payload. A result without
// timestamps is an empty series.
func parseChart(body []byte) (*model.RawSeries, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if desc := chartErrorFrom(doc); desc != "" {
		return nil, fmt.Errorf("api error: %s", desc)
	}
	raw := &model.RawSeries{}

	tsVal, err := jsonpath.Get("$.chart.result[0].timestamp", doc)
	if err != nil {
		raw.Columns = flatColumns(ohlcvColumns)
		return raw, nil
	}
	timestamps, ok := tsVal.([]any)
	if !ok {
		return nil, errors.New("chart timestamp is not a list")
	}

	quoteVal, err := jsonpath.Get("$.chart.result[0].indicators.quote[0]", doc)
	if err != nil {
		return nil, fmt.Errorf("chart quote: %w", err)
	}
	quote, ok := quoteVal.(map[string]any)
	if !ok {
		return nil, errors.New("chart quote is not an object")
	}

	var adjclose []any
	if v, err := jsonpath.Get("$.chart.result[0].indicators.adjclose[0].adjclose", doc); err == nil {
		adjclose, _ = v.([]any)
	}
	var gmtoffset int64
	if v, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", doc); err == nil {
		if n, ok := v.(float64); ok {
			gmtoffset = int64(n)
		}
	}

	var names []string
	columns := make([][]any, 0, len(ohlcvColumns))
	for _, name := range ohlcvColumns {
		values, ok := quote[strings.ToLower(name)].([]any)
		if !ok {
			continue
		}
		names = append(names, name)
		columns = append(columns, values)
	}
	closeIdx := indexOf(names, "Close")
	if closeIdx < 0 {
		return nil, errors.New("chart has no close prices")
	}
	raw.Columns = flatColumns(names)

	for i, tsv := range timestamps {
		ts, ok := tsv.(float64)
		if !ok {
			continue
		}
		c := at(columns[closeIdx], i)
		if math.IsNaN(c) {
			continue // null bars (holidays etc.)
		}
		factor := 1.0
		if adj := at(adjclose, i); !math.IsNaN(adj) && c != 0 {
			factor = adj / c
		}
		values := make([]float64, len(names))
		for j, name := range names {
			v := at(columns[j], i)
			if name != "Volume" {
				v *= factor
			}
			values[j] = v
		}
		raw.Rows = append(raw.Rows, model.RawRow{
			Time:   startOfDay(time.Unix(int64(ts)+gmtoffset, 0).UTC()),
			Values: values,
		})
	}

	sort.SliceStable(raw.Rows, func(i, j int) bool { return raw.Rows[i].Time.Before(raw.Rows[j].Time) })
	raw.Rows = dedupeDays(raw.Rows)
	return raw, nil
}

func chartErrorFrom(doc any) string {
	v, err := jsonpath.Get("$.chart.error.description", doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// dedupeDays keeps the last row of each day; the live bar Yahoo appends
// during a session shares the date of the latest daily bar.
func dedupeDays(rows []model.RawRow) []model.RawRow {
	out := rows[:0]
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Time.Equal(r.Time) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

func at(values []any, i int) float64 {
	if i >= len(values) {
		return math.NaN()
	}
	switch n := values[i].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
