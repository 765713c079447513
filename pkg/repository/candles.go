package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Candle represents a stored daily candle
type Candle struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Symbol    string    `db:"symbol" json:"symbol"`
	CloseTime time.Time `db:"close_time" json:"close_time"`
	Open      float64   `db:"open" json:"open"`
	High      float64   `db:"high" json:"high"`
	Low       float64   `db:"low" json:"low"`
	Close     float64   `db:"close" json:"close"`
	AdjClose  float64   `db:"adj_close" json:"adj_close"`
	Volume    float64   `db:"volume" json:"volume"`
	TimeZone  string    `db:"time_zone" json:"time_zone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CandleRepository persists and queries daily candles
type CandleRepository interface {
	UpsertMarketData(ctx context.Context, data *models.MarketData) (int, error)
	GetCandles(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error)
	GetLastCloseTime(ctx context.Context, symbol string) (time.Time, error)
	GetMarketData(ctx context.Context, symbol string, start, end time.Time) (*models.MarketData, error)
}

type candleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCandleRepository creates a CandleRepository backed by Postgres
func NewCandleRepository(db *sqlx.DB, logger *zap.Logger) CandleRepository {
	return &candleRepository{db: db, logger: logger}
}

const upsertCandleQuery = `
	INSERT INTO candles (id, symbol, close_time, open, high, low, close, adj_close, volume, time_zone, created_at, updated_at)
	VALUES (:id, :symbol, :close_time, :open, :high, :low, :close, :adj_close, :volume, :time_zone, NOW(), NOW())
	ON CONFLICT (symbol, close_time) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		adj_close = EXCLUDED.adj_close,
		volume = EXCLUDED.volume,
		time_zone = EXCLUDED.time_zone,
		updated_at = NOW()`

// UpsertMarketData writes every candle of a download, updating rows that
// already exist for the (symbol, close_time) pair. Returns the number of
// candles written.
func (r *candleRepository) UpsertMarketData(ctx context.Context, data *models.MarketData) (int, error) {
	if data == nil || len(data.TimeSeries) == 0 {
		return 0, nil
	}

	timeZone := "UTC"
	if data.MetaData != nil && data.MetaData.TimeZone != "" {
		timeZone = data.MetaData.TimeZone
	}

	written := 0
	for _, stockData := range data.TimeSeries {
		candle := Candle{
			ID:        uuid.New(),
			Symbol:    stockData.Symbol,
			CloseTime: stockData.CloseTime,
			Open:      stockData.Open,
			High:      stockData.High,
			Low:       stockData.Low,
			Close:     stockData.Close,
			AdjClose:  stockData.AdjClose,
			Volume:    stockData.Volume,
			TimeZone:  timeZone,
		}
		if _, err := r.db.NamedExecContext(ctx, upsertCandleQuery, candle); err != nil {
			return written, fmt.Errorf("failed to upsert candle %s@%s: %w",
				candle.Symbol, candle.CloseTime.Format("2006-01-02"), err)
		}
		written++
	}

	r.logger.Debug("Stored candles",
		zap.String("symbol", data.MetaData.Symbol),
		zap.Int("count", written))
	return written, nil
}

// GetCandles returns candles for a symbol within [start, end], oldest first.
func (r *candleRepository) GetCandles(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error) {
	var candles []Candle
	err := r.db.SelectContext(ctx, &candles, `
		SELECT * FROM candles
		WHERE symbol = $1 AND close_time >= $2 AND close_time <= $3
		ORDER BY close_time ASC`, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles for %s: %w", symbol, err)
	}
	return candles, nil
}

// GetLastCloseTime returns the most recent stored close time for a symbol,
// or the zero time when nothing is stored yet.
func (r *candleRepository) GetLastCloseTime(ctx context.Context, symbol string) (time.Time, error) {
	var last time.Time
	err := r.db.GetContext(ctx, &last,
		`SELECT close_time FROM candles WHERE symbol = $1 ORDER BY close_time DESC LIMIT 1`, symbol)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last close time for %s: %w", symbol, err)
	}
	return last, nil
}

// GetMarketData loads stored candles as a feed-shaped MarketData so the
// analysis pipeline can run against the database instead of a live feed.
func (r *candleRepository) GetMarketData(ctx context.Context, symbol string, start, end time.Time) (*models.MarketData, error) {
	candles, err := r.GetCandles(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, nil
	}

	data := &models.MarketData{
		MetaData: &models.MetaData{
			Symbol:        symbol,
			Information:   "Daily Prices (open, high, low, close) and Volumes",
			LastRefreshed: candles[len(candles)-1].CloseTime,
			Interval:      "1d",
			TimeZone:      candles[len(candles)-1].TimeZone,
		},
		TimeSeries: make([]*models.StockData, len(candles)),
	}
	for i, c := range candles {
		data.TimeSeries[i] = &models.StockData{
			Symbol:    c.Symbol,
			CloseTime: c.CloseTime,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			AdjClose:  c.AdjClose,
			Volume:    c.Volume,
		}
	}
	return data, nil
}
