package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/Ruscigno/PortfolioPulse/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testFrames(t *testing.T) (*analysis.Frame, *analysis.Frame) {
	t.Helper()
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 30)
	aaa := make([]float64, 30)
	bbb := make([]float64, 30)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
		aaa[i] = 100 + float64(i) + float64(i%3)
		bbb[i] = 50 + float64(i)*0.5 + float64(i%5)
	}
	prices, err := analysis.NewFrame(dates, map[string][]float64{"AAA": aaa, "BBB": bbb})
	require.NoError(t, err)
	returns, err := prices.LogReturns()
	require.NoError(t, err)
	return prices, returns
}

func TestWriteStatsTable(t *testing.T) {
	prices, _ := testFrames(t)
	stats, err := analysis.Describe(prices)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteStatsTable(&buf, stats)

	out := buf.String()
	assert.Contains(t, out, "SERIES")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
}

func TestWriteWeightsTable(t *testing.T) {
	var buf bytes.Buffer
	WriteWeightsTable(&buf, portfolio.Weights{"AAA": 0.6, "BBB": 0.4}, &portfolio.Performance{
		ExpectedReturn: 0.15,
		Volatility:     0.2,
		SharpeRatio:    0.65,
	})

	out := buf.String()
	assert.Contains(t, out, "60.00%")
	assert.Contains(t, out, "40.00%")
	assert.Contains(t, out, "Sharpe Ratio: 0.65")
}

func TestWriteCorrelationTable(t *testing.T) {
	_, returns := testFrames(t)
	matrix, err := analysis.Correlation(returns)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteCorrelationTable(&buf, matrix)
	assert.Contains(t, buf.String(), "1.00")
}

func TestGenerateExcel(t *testing.T) {
	prices, returns := testFrames(t)
	stats, err := analysis.Describe(prices)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data_download.xlsx")
	require.NoError(t, GenerateExcel(prices, returns, stats, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "data")
	assert.Contains(t, sheets, "stats")
	assert.NotContains(t, sheets, "Sheet1")

	// Header row: date, price columns, then return columns.
	header, err := f.GetRows("data")
	require.NoError(t, err)
	require.NotEmpty(t, header)
	assert.Equal(t, []string{"date", "AAA", "BBB", "RAAA", "RBBB"}, header[0][:5])

	// The first trading day has no return.
	firstDay := header[1]
	assert.Equal(t, "2024-01-02", firstDay[0])
	assert.Len(t, header, prices.Len()+1)
}

func TestGenerateExcelEmptyFrame(t *testing.T) {
	err := GenerateExcel(&analysis.Frame{}, nil, nil, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.Error(t, err)
}

func TestSavePriceChart(t *testing.T) {
	prices, _ := testFrames(t)
	path := filepath.Join(t.TempDir(), "prices.png")

	require.NoError(t, SavePriceChart(prices, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveVolatilityChart(t *testing.T) {
	_, returns := testFrames(t)
	points, err := analysis.RollingVolatility(returns, "AAA", 5)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vol.png")
	require.NoError(t, SaveVolatilityChart(points, "AAA", 5, path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveReturnsBoxPlot(t *testing.T) {
	_, returns := testFrames(t)
	path := filepath.Join(t.TempDir(), "box.png")

	require.NoError(t, SaveReturnsBoxPlot(returns, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveReturnsBoxPlotEmptyFrame(t *testing.T) {
	err := SaveReturnsBoxPlot(&analysis.Frame{}, filepath.Join(t.TempDir(), "box.png"))
	assert.Error(t, err)
}

func TestSaveReturnsHistogram(t *testing.T) {
	_, returns := testFrames(t)
	path := filepath.Join(t.TempDir(), "hist.png")

	require.NoError(t, SaveReturnsHistogram(returns, "BBB", 10, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestGenerateDocument(t *testing.T) {
	prices, returns := testFrames(t)
	stats, err := analysis.Describe(prices)
	require.NoError(t, err)
	matrix, err := analysis.Correlation(returns)
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := GenerateDocument(DocumentInput{
		Prices:           prices,
		Returns:          returns,
		Stats:            stats,
		Correlation:      matrix,
		Weights:          portfolio.Weights{"AAA": 0.7, "BBB": 0.3},
		Performance:      &portfolio.Performance{ExpectedReturn: 0.12, Volatility: 0.18, SharpeRatio: 0.56},
		VolatilityWindow: 5,
		HistogramBins:    10,
	}, dir)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# Investment Analysis Report")
	assert.Contains(t, text, "## Optimal Portfolio Weights")
	assert.Contains(t, text, "AAA: 70.00%")
	assert.Contains(t, text, "## Correlation of Returns")
	assert.Contains(t, text, "## Box Plot of Returns")

	for _, name := range []string{
		"price_series.png",
		"volatility_AAA.png", "volatility_BBB.png",
		"returns_box_plot.png",
		"histogram_AAA.png", "histogram_BBB.png",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
