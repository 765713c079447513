package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Ruscigno/PortfolioPulse/pkg/endpoint"
	apperrors "github.com/Ruscigno/PortfolioPulse/pkg/errors"
	"github.com/Ruscigno/PortfolioPulse/pkg/middleware"
	"github.com/Ruscigno/PortfolioPulse/pkg/service"
	httptransport "github.com/go-kit/kit/transport/http"
	"go.uber.org/zap"
)

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	RequestsPerSecond int
	BurstSize         int
	Logger            *zap.Logger
}

// NewHTTPHandler sets up HTTP handlers for the endpoints with middleware.
func NewHTTPHandler(endpoints endpoint.Endpoints, config HTTPConfig) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
	}

	mux := http.NewServeMux()

	mux.Handle("/download", httptransport.NewServer(
		endpoints.DownloadMarketData,
		decodeAnalysisRequest,
		encodeResponse,
		options...,
	))

	mux.Handle("/stats", httptransport.NewServer(
		endpoints.DescriptiveStats,
		decodeAnalysisRequest,
		encodeResponse,
		options...,
	))

	mux.Handle("/correlation", httptransport.NewServer(
		endpoints.Correlation,
		decodeAnalysisRequest,
		encodeResponse,
		options...,
	))

	mux.Handle("/weights", httptransport.NewServer(
		endpoints.OptimalWeights,
		decodeAnalysisRequest,
		encodeResponse,
		options...,
	))

	mux.Handle("/report", httptransport.NewServer(
		endpoints.GenerateReport,
		decodeAnalysisRequest,
		encodeResponse,
		options...,
	))

	// Health check endpoint
	mux.Handle("/health", httptransport.NewServer(
		endpoints.CheckHealth,
		decodeHealthRequest,
		encodeResponse,
		options...,
	))

	// Apply middleware in reverse order (last applied = first executed)
	var handler http.Handler = mux
	handler = middleware.RequestLogging(config.Logger)(handler)
	handler = middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: config.RequestsPerSecond,
		BurstSize:         config.BurstSize,
		Logger:            config.Logger,
	})(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

func decodeAnalysisRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req service.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeBadRequest, "invalid request body")
	}
	return req, nil
}

func decodeHealthRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.WrapError(err, apperrors.ErrCodeInternal, "internal error")
	}
	appErr.WithRequestID(middleware.GetRequestID(ctx))

	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToErrorResponse())
}
