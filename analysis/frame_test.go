package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func marketData(symbol string, prices map[int]float64) *models.MarketData {
	md := &models.MarketData{
		MetaData: &models.MetaData{Symbol: symbol, TimeZone: "UTC"},
	}
	for n := 0; n < 10; n++ {
		p, ok := prices[n]
		if !ok {
			continue
		}
		md.TimeSeries = append(md.TimeSeries, &models.StockData{
			Symbol:    symbol,
			CloseTime: day(n),
			Close:     p,
			AdjClose:  p,
		})
	}
	return md
}

func TestAlignPricesDropsIncompleteDates(t *testing.T) {
	data := map[string]*models.MarketData{
		"AAA": marketData("AAA", map[int]float64{0: 10, 1: 11, 2: 12, 3: 13}),
		"BBB": marketData("BBB", map[int]float64{0: 20, 2: 22, 3: 23}), // day 1 missing
	}

	frame, err := AlignPrices(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB"}, frame.Tickers)
	assert.Equal(t, 3, frame.Len())
	assert.Equal(t, []time.Time{day(0), day(2), day(3)}, frame.Dates)

	aaa, err := frame.Series("AAA")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12, 13}, aaa)
}

func TestAlignPricesNoOverlap(t *testing.T) {
	data := map[string]*models.MarketData{
		"AAA": marketData("AAA", map[int]float64{0: 10, 1: 11}),
		"BBB": marketData("BBB", map[int]float64{2: 22, 3: 23}),
	}

	_, err := AlignPrices(data)
	assert.Error(t, err)
}

func TestAlignPricesEmptyInput(t *testing.T) {
	_, err := AlignPrices(nil)
	assert.Error(t, err)

	_, err = AlignPrices(map[string]*models.MarketData{"AAA": {MetaData: &models.MetaData{}}})
	assert.Error(t, err)
}

func TestLogReturns(t *testing.T) {
	frame, err := NewFrame(
		[]time.Time{day(0), day(1), day(2)},
		map[string][]float64{"AAA": {100, 110, 99}},
	)
	require.NoError(t, err)

	returns, err := frame.LogReturns()
	require.NoError(t, err)

	assert.Equal(t, 2, returns.Len())
	assert.Equal(t, []time.Time{day(1), day(2)}, returns.Dates)

	series, err := returns.Series("AAA")
	require.NoError(t, err)
	assert.InDelta(t, math.Log(110.0/100.0), series[0], 1e-12)
	assert.InDelta(t, math.Log(99.0/110.0), series[1], 1e-12)
}

func TestLogReturnsTooShort(t *testing.T) {
	frame, err := NewFrame([]time.Time{day(0)}, map[string][]float64{"AAA": {100}})
	require.NoError(t, err)

	_, err = frame.LogReturns()
	assert.Error(t, err)
}

func TestSeriesUnknownTicker(t *testing.T) {
	frame, err := NewFrame([]time.Time{day(0)}, map[string][]float64{"AAA": {100}})
	require.NoError(t, err)

	_, err = frame.Series("ZZZ")
	assert.Error(t, err)
}

func TestNewFrameLengthMismatch(t *testing.T) {
	_, err := NewFrame([]time.Time{day(0), day(1)}, map[string][]float64{"AAA": {100}})
	assert.Error(t, err)
}
