package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
	"go.uber.org/zap"
)

// localDataFeed reads candles from CSV files on disk, one file per symbol
// named <SYMBOL>.csv with a date,open,high,low,close,adj_close,volume
// header. Useful for offline runs and tests.
type localDataFeed struct {
	dir string
}

func NewLocalDataFeed(dir string) FeedConsumer {
	return &localDataFeed{dir: dir}
}

func (s *localDataFeed) DownloadMarketData(ctx context.Context, symbol string, startTime time.Time, endTime *time.Time) (*models.MarketData, error) {
	fileName := filepath.Join(s.dir, fmt.Sprintf("%s.csv", symbol))
	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		zap.L().Error("file does not exist", zap.String("file", fileName))
		return nil, fmt.Errorf("file %s does not exist", fileName)
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := parseCSV(file, symbol)
	if err != nil {
		zap.L().Error("error parsing stock data", zap.Error(err))
		return nil, fmt.Errorf("error parsing stock data: %w", err)
	}

	end := time.Now().UTC()
	if endTime != nil {
		end = *endTime
	}
	filtered := make([]*models.StockData, 0, len(data.TimeSeries))
	for _, candle := range data.TimeSeries {
		if candle.CloseTime.Before(startTime) || candle.CloseTime.After(end) {
			continue
		}
		filtered = append(filtered, candle)
	}
	data.TimeSeries = filtered
	if len(filtered) > 0 {
		data.MetaData.LastRefreshed = filtered[len(filtered)-1].CloseTime
	}
	return data, nil
}

func (s *localDataFeed) GetServerTimeZone() (string, error) {
	return "UTC", nil
}

func parseCSV(r io.Reader, symbol string) (*models.MarketData, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	data := &models.MarketData{
		MetaData: &models.MetaData{
			Symbol:      symbol,
			Information: "Daily Prices (open, high, low, close) and Volumes",
			Interval:    "1d",
			TimeZone:    "UTC",
		},
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		closeTime, err := time.Parse("2006-01-02", record[idx["date"]])
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", record[idx["date"]], err)
		}
		candle := &models.StockData{
			Symbol:    symbol,
			CloseTime: closeTime.UTC(),
			Open:      floatColumn(record, idx, "open"),
			High:      floatColumn(record, idx, "high"),
			Low:       floatColumn(record, idx, "low"),
			Close:     floatColumn(record, idx, "close"),
			AdjClose:  floatColumn(record, idx, "adj_close"),
			Volume:    floatColumn(record, idx, "volume"),
		}
		if candle.AdjClose == 0 {
			candle.AdjClose = candle.Close
		}
		data.TimeSeries = append(data.TimeSeries, candle)
	}
	return data, nil
}

func floatColumn(record []string, idx map[string]int, name string) float64 {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return 0
	}
	v, err := strconv.ParseFloat(record[i], 64)
	if err != nil {
		return 0
	}
	return v
}
