package ingest

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Server runs one download worker per symbol on a fixed interval until it
// receives SIGINT or SIGTERM.
type Server struct {
	scraper  StockScrapper
	interval time.Duration
	logger   *zap.Logger
}

func NewServer(scraper StockScrapper, interval time.Duration, logger *zap.Logger) *Server {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Server{
		scraper:  scraper,
		interval: interval,
		logger:   logger,
	}
}

func (s *Server) worker(ctx context.Context, id int, done chan struct{}, symbol string) {
	download := func() {
		if err := s.scraper.DownloadMarketData(ctx, symbol); err != nil {
			s.logger.Info("Error downloading stock data",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.Int("worker", id))
		}
	}
	download()

	clock := time.NewTicker(s.interval)
	defer clock.Stop()
	for {
		select {
		case <-clock.C:
			download()
		case <-done:
			s.logger.Info("Worker exiting", zap.Int("worker", id))
			return
		}
	}
}

// Start reads the symbol list, launches the workers and blocks until a
// termination signal arrives.
func (s *Server) Start(ctx context.Context, symbolListFile string) error {
	symbols, err := ReadSymbolList(symbolListFile)
	if err != nil {
		s.logger.Error("Error reading symbol list", zap.Error(err))
		return err
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i, symbol := range symbols {
		wg.Add(1)
		go func(id int, symbol string) {
			defer wg.Done()
			s.worker(ctx, id, done, symbol)
		}(i, symbol)
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigchan:
		s.logger.Info("Received termination signal. Shutting down...")
	case <-ctx.Done():
		s.logger.Info("Context cancelled. Shutting down...")
	}

	close(done)
	wg.Wait()
	s.logger.Info("All workers exited")
	return nil
}

// ReadSymbolList reads symbols from a JSON file shaped
// {"stock": ["MSFT", "TSLA"]}.
func ReadSymbolList(filename string) ([]string, error) {
	jsonFile, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer jsonFile.Close()

	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, err
	}
	var symbols map[string][]string
	if err := json.Unmarshal(byteValue, &symbols); err != nil {
		return nil, err
	}
	return symbols["stock"], nil
}
