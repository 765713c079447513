package endpoint

import (
	"context"
	"errors"

	"github.com/Ruscigno/PortfolioPulse/pkg/service"
	"github.com/go-kit/kit/endpoint"
)

// Endpoints holds all Go-Kit endpoints.
type Endpoints struct {
	DownloadMarketData endpoint.Endpoint
	DescriptiveStats   endpoint.Endpoint
	Correlation        endpoint.Endpoint
	OptimalWeights     endpoint.Endpoint
	GenerateReport     endpoint.Endpoint
	CheckHealth        endpoint.Endpoint
}

// MakeEndpoints creates endpoints for the service.
func MakeEndpoints(s service.Service) Endpoints {
	return Endpoints{
		DownloadMarketData: makeDownloadEndpoint(s),
		DescriptiveStats:   makeStatsEndpoint(s),
		Correlation:        makeCorrelationEndpoint(s),
		OptimalWeights:     makeWeightsEndpoint(s),
		GenerateReport:     makeReportEndpoint(s),
		CheckHealth:        makeCheckHealthEndpoint(s),
	}
}

func makeDownloadEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.AnalysisRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.DownloadMarketData(ctx, req)
	}
}

func makeStatsEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.AnalysisRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.DescriptiveStats(ctx, req)
	}
}

func makeCorrelationEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.AnalysisRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.Correlation(ctx, req)
	}
}

func makeWeightsEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.AnalysisRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.OptimalWeights(ctx, req)
	}
}

func makeReportEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.AnalysisRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.GenerateReport(ctx, req)
	}
}

func makeCheckHealthEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.CheckHealth(ctx)
	}
}
