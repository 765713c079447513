package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
	"github.com/Ruscigno/PortfolioPulse/pkg/config"
	apperrors "github.com/Ruscigno/PortfolioPulse/pkg/errors"
	"github.com/Ruscigno/PortfolioPulse/pkg/metrics"
	"github.com/Ruscigno/PortfolioPulse/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockFeed generates a deterministic random walk per symbol so covariance
// estimates stay well conditioned.
type mockFeed struct {
	days int
	err  error
}

func (m *mockFeed) DownloadMarketData(ctx context.Context, symbol string, startTime time.Time, endTime *time.Time) (*models.MarketData, error) {
	if m.err != nil {
		return nil, m.err
	}

	var seed int64
	for _, c := range symbol {
		seed = seed*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	data := &models.MarketData{
		MetaData: &models.MetaData{Symbol: symbol, TimeZone: "UTC", Interval: "1d"},
	}
	price := 100.0
	for i := 0; i < m.days; i++ {
		price *= math.Exp(0.0005 + 0.01*rng.NormFloat64())
		data.TimeSeries = append(data.TimeSeries, &models.StockData{
			Symbol:    symbol,
			CloseTime: startTime.AddDate(0, 0, i),
			Close:     price,
			AdjClose:  price,
			Volume:    1e6,
		})
	}
	return data, nil
}

func (m *mockFeed) GetServerTimeZone() (string, error) { return "UTC", nil }

type mockRepo struct {
	upserts int
}

func (m *mockRepo) UpsertMarketData(ctx context.Context, data *models.MarketData) (int, error) {
	m.upserts += len(data.TimeSeries)
	return len(data.TimeSeries), nil
}

func (m *mockRepo) GetCandles(ctx context.Context, symbol string, start, end time.Time) ([]repository.Candle, error) {
	return nil, nil
}

func (m *mockRepo) GetLastCloseTime(ctx context.Context, symbol string) (time.Time, error) {
	return time.Time{}, nil
}

func (m *mockRepo) GetMarketData(ctx context.Context, symbol string, start, end time.Time) (*models.MarketData, error) {
	return nil, nil
}

type mockHealth struct{ err error }

func (m *mockHealth) Health(ctx context.Context) error { return m.err }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		RiskFreeRate:    0.02,
		ReportOutputDir: t.TempDir(),
	}
}

func newTestService(t *testing.T, consumer *mockFeed, repo repository.CandleRepository, health HealthChecker) Service {
	t.Helper()
	return NewService(consumer, repo, health, testConfig(t), zap.NewNop(),
		metrics.NewSimpleMetricsCollector(zap.NewNop()))
}

func analysisRequest() AnalysisRequest {
	return AnalysisRequest{
		Tickers: []string{"aapl", "msft"},
		Start:   "2024-01-01",
		End:     "2024-03-01",
	}
}

func TestDownloadMarketData(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(t, &mockFeed{days: 10}, repo, nil)

	resp, err := svc.DownloadMarketData(context.Background(), analysisRequest())
	require.NoError(t, err)

	assert.True(t, resp.Stored)
	assert.Equal(t, 10, resp.Candles["AAPL"])
	assert.Equal(t, 10, resp.Candles["MSFT"])
	assert.Equal(t, 20, repo.upserts)
}

func TestDownloadMarketDataWithoutRepo(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 5}, nil, nil)

	resp, err := svc.DownloadMarketData(context.Background(), analysisRequest())
	require.NoError(t, err)
	assert.False(t, resp.Stored)
}

func TestDescriptiveStats(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 40}, nil, nil)

	resp, err := svc.DescriptiveStats(context.Background(), analysisRequest())
	require.NoError(t, err)

	require.Len(t, resp.Prices, 2)
	require.Len(t, resp.Returns, 2)
	assert.Equal(t, "AAPL", resp.Prices[0].Series)
	assert.Equal(t, 40, resp.Prices[0].Count)
	assert.Equal(t, 39, resp.Returns[0].Count) // first day has no return
}

func TestCorrelation(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 40}, nil, nil)

	resp, err := svc.Correlation(context.Background(), analysisRequest())
	require.NoError(t, err)

	require.NotNil(t, resp.Correlation)
	assert.Equal(t, []string{"AAPL", "MSFT"}, resp.Correlation.Tickers)
	assert.Equal(t, 1.0, resp.Correlation.Values[0][0])
	assert.LessOrEqual(t, math.Abs(resp.Correlation.Values[0][1]), 1.0)
}

func TestOptimalWeights(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 60}, nil, nil)

	resp, err := svc.OptimalWeights(context.Background(), analysisRequest())
	require.NoError(t, err)

	var sum float64
	for _, w := range resp.Weights {
		assert.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
	require.NotNil(t, resp.Performance)
	assert.Greater(t, resp.Performance.Volatility, 0.0)
}

func TestGenerateReport(t *testing.T) {
	cfg := config.Config{RiskFreeRate: 0.02, ReportOutputDir: t.TempDir()}
	svc := NewService(&mockFeed{days: 60}, nil, nil, cfg, zap.NewNop(),
		metrics.NewSimpleMetricsCollector(zap.NewNop()))

	resp, err := svc.GenerateReport(context.Background(), analysisRequest())
	require.NoError(t, err)

	for _, path := range []string{resp.ReportPath, resp.ExcelPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, filepath.Join(cfg.ReportOutputDir, "investment_analysis.md"), resp.ReportPath)
	assert.Equal(t, filepath.Join(cfg.ReportOutputDir, "data_download.xlsx"), resp.ExcelPath)
}

func TestValidateRequestErrors(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 10}, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  AnalysisRequest
		code apperrors.ErrorCode
	}{
		{"no tickers", AnalysisRequest{Start: "2024-01-01"}, apperrors.ErrCodeInvalidSymbol},
		{"bad start", AnalysisRequest{Tickers: []string{"AAPL"}, Start: "01/02/2024"}, apperrors.ErrCodeInvalidRange},
		{"bad end", AnalysisRequest{Tickers: []string{"AAPL"}, Start: "2024-01-01", End: "nope"}, apperrors.ErrCodeInvalidRange},
		{"end before start", AnalysisRequest{Tickers: []string{"AAPL"}, Start: "2024-03-01", End: "2024-01-01"}, apperrors.ErrCodeInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DescriptiveStats(ctx, tt.req)
			require.Error(t, err)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestFeedErrorWrapped(t *testing.T) {
	svc := newTestService(t, &mockFeed{err: fmt.Errorf("connection refused")}, nil, nil)

	_, err := svc.DescriptiveStats(context.Background(), analysisRequest())
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeFeedError, appErr.Code)
}

func TestCheckHealth(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 10}, nil, &mockHealth{})

	resp, err := svc.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Details["database"])
	assert.Equal(t, "CLOSED", resp.Details["feed_circuit"])
}

func TestCheckHealthDegraded(t *testing.T) {
	svc := newTestService(t, &mockFeed{days: 10}, nil, &mockHealth{err: fmt.Errorf("dial tcp: connection refused")})

	resp, err := svc.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.Details["database"], "connection refused")
}

func TestNormalizeTickers(t *testing.T) {
	got := NormalizeTickers([]string{" aapl ", "MSFT", "aapl", "", "googl"})
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, got)
}
