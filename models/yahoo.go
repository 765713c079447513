package models

// YahooChartResponse mirrors the envelope returned by Yahoo's
// v8/finance/chart endpoint. Only the fields we consume are declared.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				Symbol               string `json:"symbol"`
				ExchangeName         string `json:"exchangeName"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *YahooChartError `json:"error"`
	} `json:"chart"`
}

// YahooChartError is the error payload Yahoo returns for bad symbols
// or out-of-range periods.
type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
