package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
)

// Frame holds one or more daily series aligned on a shared date axis.
// It is used both for price frames and for log-return frames.
type Frame struct {
	Dates   []time.Time
	Tickers []string
	data    map[string][]float64
}

// NewFrame builds a frame from pre-aligned columns. Every column must have
// exactly one value per date.
func NewFrame(dates []time.Time, columns map[string][]float64) (*Frame, error) {
	tickers := make([]string, 0, len(columns))
	for ticker, values := range columns {
		if len(values) != len(dates) {
			return nil, fmt.Errorf("column %s has %d values for %d dates", ticker, len(values), len(dates))
		}
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return &Frame{Dates: dates, Tickers: tickers, data: columns}, nil
}

// AlignPrices builds a price frame from per-symbol market data, keyed on
// the adjusted close. Dates missing a candle for any symbol are dropped so
// every row is complete, matching a column-wise dropna.
func AlignPrices(data map[string]*models.MarketData) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no market data provided")
	}

	type dayPrices map[string]float64
	byDate := make(map[time.Time]dayPrices)
	for symbol, md := range data {
		if md == nil || len(md.TimeSeries) == 0 {
			return nil, fmt.Errorf("no candles for symbol %s", symbol)
		}
		for _, candle := range md.TimeSeries {
			day := candle.CloseTime.UTC().Truncate(24 * time.Hour)
			prices, ok := byDate[day]
			if !ok {
				prices = make(dayPrices, len(data))
				byDate[day] = prices
			}
			prices[symbol] = candle.AdjClose
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for day, prices := range byDate {
		if len(prices) < len(data) {
			continue
		}
		complete := true
		for _, p := range prices {
			if p == 0 || math.IsNaN(p) {
				complete = false
				break
			}
		}
		if complete {
			dates = append(dates, day)
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no overlapping trading days across symbols")
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	columns := make(map[string][]float64, len(data))
	for symbol := range data {
		column := make([]float64, len(dates))
		for i, day := range dates {
			column[i] = byDate[day][symbol]
		}
		columns[symbol] = column
	}
	return NewFrame(dates, columns)
}

// Series returns the column for a ticker.
func (f *Frame) Series(ticker string) ([]float64, error) {
	values, ok := f.data[ticker]
	if !ok {
		return nil, fmt.Errorf("ticker %s not found in frame", ticker)
	}
	return values, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Dates)
}

// IsEmpty reports whether the frame has no rows or no columns.
func (f *Frame) IsEmpty() bool {
	return f == nil || len(f.Dates) == 0 || len(f.Tickers) == 0
}

// LogReturns computes r_t = ln(P_t / P_{t-1}) for every column. The first
// row has no prior price and is dropped.
func (f *Frame) LogReturns() (*Frame, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("frame is empty")
	}
	if f.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 rows to compute returns, have %d", f.Len())
	}

	columns := make(map[string][]float64, len(f.Tickers))
	for _, ticker := range f.Tickers {
		prices := f.data[ticker]
		returns := make([]float64, len(prices)-1)
		for i := 1; i < len(prices); i++ {
			returns[i-1] = math.Log(prices[i] / prices[i-1])
		}
		columns[ticker] = returns
	}
	return NewFrame(f.Dates[1:], columns)
}
