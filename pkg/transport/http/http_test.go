package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/Ruscigno/PortfolioPulse/pkg/endpoint"
	apperrors "github.com/Ruscigno/PortfolioPulse/pkg/errors"
	"github.com/Ruscigno/PortfolioPulse/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubService returns canned responses so the transport layer can be
// exercised without a feed.
type stubService struct {
	statsErr error
}

func (s *stubService) DownloadMarketData(ctx context.Context, req service.AnalysisRequest) (service.DownloadResponse, error) {
	return service.DownloadResponse{Candles: map[string]int{"AAPL": 10}}, nil
}

func (s *stubService) DescriptiveStats(ctx context.Context, req service.AnalysisRequest) (service.StatsResponse, error) {
	if s.statsErr != nil {
		return service.StatsResponse{}, s.statsErr
	}
	return service.StatsResponse{
		Prices: []analysis.DescriptiveStats{{Series: "AAPL", Count: 10, Mean: 180.5}},
	}, nil
}

func (s *stubService) Correlation(ctx context.Context, req service.AnalysisRequest) (service.CorrelationResponse, error) {
	return service.CorrelationResponse{}, nil
}

func (s *stubService) OptimalWeights(ctx context.Context, req service.AnalysisRequest) (service.WeightsResponse, error) {
	return service.WeightsResponse{}, nil
}

func (s *stubService) GenerateReport(ctx context.Context, req service.AnalysisRequest) (service.ReportResponse, error) {
	return service.ReportResponse{}, nil
}

func (s *stubService) CheckHealth(ctx context.Context) (service.HealthResponse, error) {
	return service.HealthResponse{Status: "ok", Timestamp: time.Now()}, nil
}

func newTestHandler(svc service.Service) http.Handler {
	return NewHTTPHandler(endpoint.MakeEndpoints(svc), HTTPConfig{
		RequestsPerSecond: 100,
		BurstSize:         100,
		Logger:            zap.NewNop(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestHandler(&stubService{})

	body := `{"tickers":["AAPL"],"start":"2024-01-01","end":"2024-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/stats", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Prices, 1)
	assert.Equal(t, "AAPL", resp.Prices[0].Series)
}

func TestStatsEndpointBadBody(t *testing.T) {
	handler := newTestHandler(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/stats", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeBadRequest, resp.Code)
}

func TestStatsEndpointServiceError(t *testing.T) {
	svc := &stubService{
		statsErr: apperrors.NewAppError(apperrors.ErrCodeNoData, "no data returned for AAPL"),
	}
	handler := newTestHandler(svc)

	body := `{"tickers":["AAPL"],"start":"2024-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/stats", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeNoData, resp.Code)
	assert.NotEmpty(t, resp.RequestID)
}

func TestRateLimitExceeded(t *testing.T) {
	handler := NewHTTPHandler(endpoint.MakeEndpoints(&stubService{}), HTTPConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		Logger:            zap.NewNop(),
	})

	var limited bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
