package models

import "time"

// MarketData is the normalized result of a feed download: one symbol,
// a meta block and a daily time series sorted oldest first.
type MarketData struct {
	MetaData   *MetaData    `json:"meta_data"`
	TimeSeries []*StockData `json:"time_series"`
}

type MetaData struct {
	Symbol        string    `json:"symbol"`
	Information   string    `json:"information"`
	LastRefreshed time.Time `json:"last_refreshed"`
	Interval      string    `json:"interval"`
	TimeZone      string    `json:"time_zone"`
}

// StockData is a single daily candle. AdjClose carries the
// dividend/split adjusted close when the provider supplies one;
// otherwise it equals Close.
type StockData struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	AdjClose  float64   `json:"adj_close"`
	Volume    float64   `json:"volume"`
	CloseTime time.Time `json:"close_time"`
}
