package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
)

const (
	DataFeedProviderLocal = "local"
	DataFeedProviderYahoo = "yahoo"
)

// FeedConsumer downloads daily market data for one symbol. Implementations
// must return candles sorted oldest first.
type FeedConsumer interface {
	DownloadMarketData(ctx context.Context, symbol string, startTime time.Time, endTime *time.Time) (*models.MarketData, error)
	GetServerTimeZone() (string, error)
}

// NewDataFeed returns the feed implementation for the given provider name.
// An empty provider defaults to Yahoo Finance.
func NewDataFeed(provider, localDir string) (FeedConsumer, error) {
	switch provider {
	case DataFeedProviderLocal:
		return NewLocalDataFeed(localDir), nil
	case DataFeedProviderYahoo, "":
		return NewYahooDataFeed(), nil
	default:
		return nil, fmt.Errorf("unsupported data feed provider: %s", provider)
	}
}
