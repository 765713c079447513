package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Ruscigno/PortfolioPulse/models"
	"github.com/Ruscigno/PortfolioPulse/pkg/retry"
	"go.uber.org/zap"
)

const (
	FinanceYahooUrl = "%s/v8/finance/chart/%s?interval=1d&includeAdjustedClose=true"
	PeriodString    = "&period1=%d&period2=%d"
	UserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124"

	defaultYahooBaseURL = "https://query2.finance.yahoo.com"
)

type yahooScraper struct {
	baseURL     string
	client      *http.Client
	retryConfig retry.RetryConfig
}

// NewYahooDataFeed returns a FeedConsumer backed by Yahoo's chart API.
func NewYahooDataFeed() FeedConsumer {
	return &yahooScraper{
		baseURL:     defaultYahooBaseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		retryConfig: retry.RetryHTTPRequest(),
	}
}

// DownloadMarketData fetches daily OHLCV candles for a symbol from Yahoo
// Finance. The adjusted close is preferred when the API supplies one, the
// same series yfinance exposes as "Adj Close".
func (y *yahooScraper) DownloadMarketData(ctx context.Context, symbol string, startTime time.Time, endTime *time.Time) (*models.MarketData, error) {
	url, err := y.constructURL(symbol, startTime, endTime)
	if err != nil {
		return nil, err
	}

	var chart *models.YahooChartResponse
	err = retry.Retry(ctx, y.retryConfig, func() error {
		resp, err := y.makeHTTPRequest(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := y.checkResponseStatus(resp); err != nil {
			return err
		}

		chart, err = y.parseResponse(resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	data := y.extractOHLCVData(chart, symbol)
	zap.L().Debug("downloaded market data",
		zap.String("symbol", symbol),
		zap.Int("candles", len(data.TimeSeries)))
	return data, nil
}

func (y *yahooScraper) constructURL(symbol string, startDate time.Time, endDate *time.Time) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("symbol is empty")
	}
	if endDate == nil {
		ed := time.Now().UTC()
		endDate = &ed
	}
	if !endDate.After(startDate) {
		return "", fmt.Errorf("end date %s is not after start date %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	url := fmt.Sprintf(FinanceYahooUrl, y.baseURL, symbol)
	url += fmt.Sprintf(PeriodString, startDate.Unix(), endDate.Unix())
	return url, nil
}

func (y *yahooScraper) makeHTTPRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	return resp, nil
}

func (y *yahooScraper) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func (y *yahooScraper) parseResponse(resp *http.Response) (*models.YahooChartResponse, error) {
	var chart models.YahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("no data returned")
	}

	return &chart, nil
}

func (y *yahooScraper) extractOHLCVData(chart *models.YahooChartResponse, symbol string) *models.MarketData {
	chartResult := chart.Chart.Result[0]
	quote := chartResult.Indicators.Quote[0]

	var adjClose []float64
	if len(chartResult.Indicators.AdjClose) > 0 {
		adjClose = chartResult.Indicators.AdjClose[0].AdjClose
	}

	timeZone := chartResult.Meta.ExchangeTimezoneName
	if timeZone == "" {
		timeZone = "UTC"
	}

	result := &models.MarketData{
		MetaData: &models.MetaData{
			Symbol:        symbol,
			Information:   "Daily Prices (open, high, low, close) and Volumes",
			LastRefreshed: time.Unix(chartResult.Timestamp[len(chartResult.Timestamp)-1], 0).UTC(),
			Interval:      "1d",
			TimeZone:      timeZone,
		},
	}

	result.TimeSeries = make([]*models.StockData, 0, len(chartResult.Timestamp))
	for i := range chartResult.Timestamp {
		closePrice := nullToZero(at(quote.Close, i))
		if closePrice == 0 {
			// Yahoo marks holidays and halted sessions with nulls.
			continue
		}
		adjusted := closePrice
		if i < len(adjClose) {
			if v := nullToZero(adjClose[i]); v != 0 {
				adjusted = v
			}
		}
		result.TimeSeries = append(result.TimeSeries, &models.StockData{
			Symbol:    symbol,
			CloseTime: time.Unix(chartResult.Timestamp[i], 0).UTC(),
			Open:      nullToZero(at(quote.Open, i)),
			High:      nullToZero(at(quote.High, i)),
			Low:       nullToZero(at(quote.Low, i)),
			Close:     closePrice,
			AdjClose:  adjusted,
			Volume:    nullToZero(at(quote.Volume, i)),
		})
	}
	return result
}

func (y *yahooScraper) GetServerTimeZone() (string, error) {
	return "UTC", nil
}

func at(vals []float64, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	return vals[i]
}

// nullToZero handles null values in Yahoo's response, decoded as NaN or 0.
func nullToZero(val float64) float64 {
	if math.IsNaN(val) {
		return 0
	}
	return val
}
