// Package ingest keeps the candle store current: per-symbol workers
// download incremental daily data from the configured feed and upsert it
// into Postgres.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/Ruscigno/PortfolioPulse/feed"
	"github.com/Ruscigno/PortfolioPulse/pkg/repository"
	"go.uber.org/zap"
)

// StockScrapper downloads and stores market data for one symbol at a time.
type StockScrapper interface {
	DownloadMarketData(ctx context.Context, symbol string) error
}

type stockScrapper struct {
	feed     feed.FeedConsumer
	repo     repository.CandleRepository
	lookback time.Duration
	logger   *zap.Logger
}

// NewStockScrapper wires a feed to the candle repository. lookback bounds
// the initial backfill when a symbol has no stored candles yet.
func NewStockScrapper(consumer feed.FeedConsumer, repo repository.CandleRepository, lookback time.Duration, logger *zap.Logger) StockScrapper {
	if lookback <= 0 {
		lookback = 365 * 24 * time.Hour
	}
	return &stockScrapper{
		feed:     consumer,
		repo:     repo,
		lookback: lookback,
		logger:   logger,
	}
}

// DownloadMarketData fetches everything from the last stored candle (or
// the lookback horizon) to now, in month-sized steps, and upserts it.
func (s *stockScrapper) DownloadMarketData(ctx context.Context, symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is empty")
	}

	lastDate, err := s.repo.GetLastCloseTime(ctx, symbol)
	if err != nil {
		return err
	}
	if lastDate.IsZero() {
		lastDate = time.Now().UTC().Add(-s.lookback)
	}

	var latest time.Time
	total := 0
	for _, window := range buildWindows(lastDate) {
		monthlyData, err := s.feed.DownloadMarketData(ctx, symbol, window.start, &window.end)
		if err != nil {
			return err
		}
		if monthlyData == nil || len(monthlyData.TimeSeries) == 0 {
			continue
		}
		written, err := s.repo.UpsertMarketData(ctx, monthlyData)
		if err != nil {
			s.logger.Error("Error storing candles",
				zap.String("symbol", symbol),
				zap.Error(err))
			return err
		}
		total += written
		if monthlyData.MetaData.LastRefreshed.After(latest) {
			latest = monthlyData.MetaData.LastRefreshed
		}
	}

	s.logger.Info("Downloaded stock data",
		zap.String("symbol", symbol),
		zap.Int("candles", total),
		zap.String("latest", latest.Format("2006-01-02")))
	return nil
}

type window struct {
	start time.Time
	end   time.Time
}

// buildWindows splits [lastDate, now] into month steps, oldest first.
func buildWindows(lastDate time.Time) []window {
	now := time.Now().UTC()
	if !now.After(lastDate) {
		return nil
	}

	var windows []window
	start := lastDate
	for start.Before(now) {
		end := start.AddDate(0, 1, 0)
		if end.After(now) {
			end = now
		}
		windows = append(windows, window{start: start, end: end})
		start = end
	}
	return windows
}
