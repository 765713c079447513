package service

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/Ruscigno/PortfolioPulse/feed"
	"github.com/Ruscigno/PortfolioPulse/models"
	"github.com/Ruscigno/PortfolioPulse/pkg/config"
	apperrors "github.com/Ruscigno/PortfolioPulse/pkg/errors"
	"github.com/Ruscigno/PortfolioPulse/pkg/metrics"
	"github.com/Ruscigno/PortfolioPulse/pkg/repository"
	"github.com/Ruscigno/PortfolioPulse/pkg/retry"
	"github.com/Ruscigno/PortfolioPulse/portfolio"
	"github.com/Ruscigno/PortfolioPulse/report"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// AnalysisRequest selects the assets and date range every operation works on.
type AnalysisRequest struct {
	Tickers []string `json:"tickers"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
}

// DownloadResponse reports how much data each symbol produced.
type DownloadResponse struct {
	Candles map[string]int `json:"candles"`
	Stored  bool           `json:"stored"`
}

// StatsResponse carries descriptive statistics for prices and returns.
type StatsResponse struct {
	Prices  []analysis.DescriptiveStats `json:"prices"`
	Returns []analysis.DescriptiveStats `json:"returns"`
}

// CorrelationResponse carries the return correlation matrix.
type CorrelationResponse struct {
	Correlation *analysis.CorrelationMatrix `json:"correlation"`
}

// WeightsResponse carries the max-Sharpe allocation and its performance.
type WeightsResponse struct {
	Weights     portfolio.Weights      `json:"weights"`
	Performance *portfolio.Performance `json:"performance"`
}

// ReportResponse points at the generated artifacts.
type ReportResponse struct {
	ReportPath string `json:"report_path"`
	ExcelPath  string `json:"excel_path"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Service is the portfolio analysis service.
type Service interface {
	DownloadMarketData(ctx context.Context, req AnalysisRequest) (DownloadResponse, error)
	DescriptiveStats(ctx context.Context, req AnalysisRequest) (StatsResponse, error)
	Correlation(ctx context.Context, req AnalysisRequest) (CorrelationResponse, error)
	OptimalWeights(ctx context.Context, req AnalysisRequest) (WeightsResponse, error)
	GenerateReport(ctx context.Context, req AnalysisRequest) (ReportResponse, error)
	CheckHealth(ctx context.Context) (HealthResponse, error)
}

// HealthChecker is implemented by dependencies that can report health,
// the database in particular.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type service struct {
	feed           feed.FeedConsumer
	repo           repository.CandleRepository
	health         HealthChecker
	cfg            config.Config
	logger         *zap.Logger
	metrics        metrics.MetricsCollector
	circuitBreaker *retry.CircuitBreaker
}

// NewService creates a new Service instance. repo and health may be nil
// when the service runs without a database.
func NewService(
	consumer feed.FeedConsumer,
	repo repository.CandleRepository,
	health HealthChecker,
	cfg config.Config,
	logger *zap.Logger,
	collector metrics.MetricsCollector,
) Service {
	cbConfig := retry.DefaultCircuitBreakerConfig("feed")
	cbConfig.Logger = logger
	return &service{
		feed:           consumer,
		repo:           repo,
		health:         health,
		cfg:            cfg,
		logger:         logger,
		metrics:        collector,
		circuitBreaker: retry.NewCircuitBreaker(cbConfig),
	}
}

func (s *service) DownloadMarketData(ctx context.Context, req AnalysisRequest) (DownloadResponse, error) {
	defer s.observe("download_market_data", time.Now())

	data, err := s.fetchAll(ctx, req)
	if err != nil {
		return DownloadResponse{}, err
	}

	resp := DownloadResponse{Candles: make(map[string]int, len(data))}
	for symbol, md := range data {
		resp.Candles[symbol] = len(md.TimeSeries)
		if s.repo != nil {
			if _, err := s.repo.UpsertMarketData(ctx, md); err != nil {
				return DownloadResponse{}, apperrors.WrapError(err, apperrors.ErrCodeDatabaseError, "failed to store market data")
			}
			resp.Stored = true
		}
	}
	return resp, nil
}

func (s *service) DescriptiveStats(ctx context.Context, req AnalysisRequest) (StatsResponse, error) {
	defer s.observe("descriptive_stats", time.Now())

	prices, returns, err := s.loadFrames(ctx, req)
	if err != nil {
		return StatsResponse{}, err
	}

	priceStats, err := analysis.Describe(prices)
	if err != nil {
		return StatsResponse{}, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to describe prices")
	}
	returnStats, err := analysis.Describe(returns)
	if err != nil {
		return StatsResponse{}, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to describe returns")
	}
	return StatsResponse{Prices: priceStats, Returns: returnStats}, nil
}

func (s *service) Correlation(ctx context.Context, req AnalysisRequest) (CorrelationResponse, error) {
	defer s.observe("correlation", time.Now())

	_, returns, err := s.loadFrames(ctx, req)
	if err != nil {
		return CorrelationResponse{}, err
	}
	matrix, err := analysis.Correlation(returns)
	if err != nil {
		return CorrelationResponse{}, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to correlate returns")
	}
	return CorrelationResponse{Correlation: matrix}, nil
}

func (s *service) OptimalWeights(ctx context.Context, req AnalysisRequest) (WeightsResponse, error) {
	defer s.observe("optimal_weights", time.Now())

	_, returns, err := s.loadFrames(ctx, req)
	if err != nil {
		return WeightsResponse{}, err
	}

	est, err := portfolio.Estimate(returns)
	if err != nil {
		return WeightsResponse{}, apperrors.WrapError(err, apperrors.ErrCodeOptimization, "failed to estimate returns and risk")
	}
	weights, err := portfolio.MaxSharpe(est, s.cfg.RiskFreeRate)
	if err != nil {
		return WeightsResponse{}, apperrors.WrapError(err, apperrors.ErrCodeOptimization, "failed to optimize weights")
	}
	perf, err := portfolio.Evaluate(est, weights, s.cfg.RiskFreeRate)
	if err != nil {
		return WeightsResponse{}, apperrors.WrapError(err, apperrors.ErrCodeOptimization, "failed to evaluate portfolio")
	}
	return WeightsResponse{Weights: weights, Performance: perf}, nil
}

func (s *service) GenerateReport(ctx context.Context, req AnalysisRequest) (ReportResponse, error) {
	defer s.observe("generate_report", time.Now())

	prices, returns, err := s.loadFrames(ctx, req)
	if err != nil {
		return ReportResponse{}, err
	}

	priceStats, err := analysis.Describe(prices)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to describe prices")
	}
	matrix, err := analysis.Correlation(returns)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to correlate returns")
	}
	est, err := portfolio.Estimate(returns)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeOptimization, "failed to estimate returns and risk")
	}
	weights, err := portfolio.MaxSharpe(est, s.cfg.RiskFreeRate)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeOptimization, "failed to optimize weights")
	}
	perf, err := portfolio.Evaluate(est, weights, s.cfg.RiskFreeRate)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeOptimization, "failed to evaluate portfolio")
	}

	reportPath, err := report.GenerateDocument(report.DocumentInput{
		Prices:      prices,
		Returns:     returns,
		Stats:       priceStats,
		Correlation: matrix,
		Weights:     weights,
		Performance: perf,
	}, s.cfg.ReportOutputDir)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeReportFailure, "failed to generate report")
	}

	returnStats, err := analysis.Describe(returns)
	if err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to describe returns")
	}
	excelPath := filepath.Join(s.cfg.ReportOutputDir, "data_download.xlsx")
	if err := report.GenerateExcel(prices, returns, append(priceStats, returnStats...), excelPath); err != nil {
		return ReportResponse{}, apperrors.WrapError(err, apperrors.ErrCodeReportFailure, "failed to generate Excel workbook")
	}

	return ReportResponse{ReportPath: reportPath, ExcelPath: excelPath}, nil
}

func (s *service) CheckHealth(ctx context.Context) (HealthResponse, error) {
	resp := HealthResponse{
		Status:    "ok",
		Details:   map[string]string{"feed_circuit": s.circuitBreaker.State().String()},
		Timestamp: time.Now(),
	}
	if s.health != nil {
		if err := s.health.Health(ctx); err != nil {
			resp.Status = "degraded"
			resp.Details["database"] = err.Error()
		} else {
			resp.Details["database"] = "ok"
		}
	}
	return resp, nil
}

// fetchAll validates the request and downloads market data per ticker
// through the feed circuit breaker.
func (s *service) fetchAll(ctx context.Context, req AnalysisRequest) (map[string]*models.MarketData, error) {
	tickers, start, end, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*models.MarketData, len(tickers))
	for _, ticker := range tickers {
		var md *models.MarketData
		err := s.circuitBreaker.Execute(ctx, func() error {
			var ferr error
			md, ferr = s.feed.DownloadMarketData(ctx, ticker, start, &end)
			return ferr
		})
		if err != nil {
			s.metrics.IncrementCounter("feed_download_errors", map[string]string{"symbol": ticker})
			return nil, apperrors.WrapError(err, apperrors.ErrCodeFeedError, "failed to download market data").
				WithDetails(ticker + ": " + err.Error())
		}
		if md == nil || len(md.TimeSeries) == 0 {
			return nil, apperrors.NewAppError(apperrors.ErrCodeNoData, "no data returned for "+ticker)
		}
		result[ticker] = md
	}
	return result, nil
}

func (s *service) loadFrames(ctx context.Context, req AnalysisRequest) (*analysis.Frame, *analysis.Frame, error) {
	data, err := s.fetchAll(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	prices, err := analysis.AlignPrices(data)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to align prices")
	}
	returns, err := prices.LogReturns()
	if err != nil {
		return nil, nil, apperrors.WrapError(err, apperrors.ErrCodeNoData, "failed to compute returns")
	}
	return prices, returns, nil
}

func (s *service) observe(operation string, start time.Time) {
	s.metrics.IncrementCounter("service_requests", map[string]string{"operation": operation})
	s.metrics.RecordDuration("service_request", time.Since(start), map[string]string{"operation": operation})
}

// NormalizeTickers uppercases, trims and deduplicates ticker symbols,
// preserving order of first appearance.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	result := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

func validateRequest(req AnalysisRequest) ([]string, time.Time, time.Time, error) {
	tickers := NormalizeTickers(req.Tickers)
	if len(tickers) == 0 {
		return nil, time.Time{}, time.Time{}, apperrors.NewAppError(apperrors.ErrCodeInvalidSymbol, "at least one ticker is required")
	}
	sort.Strings(tickers)

	start, err := time.Parse(dateLayout, req.Start)
	if err != nil {
		return nil, time.Time{}, time.Time{}, apperrors.NewAppError(apperrors.ErrCodeInvalidRange, "invalid start date, expected YYYY-MM-DD")
	}
	end := time.Now().UTC()
	if req.End != "" {
		end, err = time.Parse(dateLayout, req.End)
		if err != nil {
			return nil, time.Time{}, time.Time{}, apperrors.NewAppError(apperrors.ErrCodeInvalidRange, "invalid end date, expected YYYY-MM-DD")
		}
		// Make the end date inclusive of its trading day.
		end = end.Add(24*time.Hour - time.Second)
	}
	if !end.After(start) {
		return nil, time.Time{}, time.Time{}, apperrors.NewAppError(apperrors.ErrCodeInvalidRange, "end date must be after start date")
	}
	return tickers, start, end, nil
}
