package collector

import (
	"context"
	"sync"
	"time"

	"PriceLineup/internal/model"
)

// FetchCall records one MockFetcher invocation.
type FetchCall struct {
	Symbol string
	Start  time.Time
}

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without an entry get an empty series.
type MockFetcher struct {
	Series map[string]*model.RawSeries
	Errors map[string]error

	mu    sync.Mutex
	calls []FetchCall
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(ctx context.Context, symbol string, start time.Time) (*model.RawSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, FetchCall{Symbol: symbol, Start: start})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, &model.ProviderError{Provider: m.Name(), Symbol: symbol, Err: err}
	}
	if raw, ok := m.Series[symbol]; ok {
		cp := *raw
		cp.Symbol = symbol
		return &cp, nil
	}
	return &model.RawSeries{Symbol: symbol, Columns: flatColumns(ohlcvColumns)}, nil
}

// Calls returns the invocations so far, in order.
func (m *MockFetcher) Calls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.calls...)
}

// GenerateSeries builds count consecutive daily rows starting at start,
// drifting around basePrice.
func GenerateSeries(start time.Time, count int, basePrice float64) *model.RawSeries {
	raw := &model.RawSeries{Columns: flatColumns(ohlcvColumns)}
	day := startOfDay(start)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		raw.Rows = append(raw.Rows, model.RawRow{
			Time:   day.AddDate(0, 0, i),
			Values: []float64{p, p * 1.005, p * 0.995, p * 0.999, 1000000},
		})
	}
	return raw
}
