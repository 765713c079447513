package analysis

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultVolatilityWindow is the rolling window, in trading days, used
// when the caller does not specify one.
const DefaultVolatilityWindow = 20

// VolatilityPoint is the standard deviation of returns over the window
// ending at Date.
type VolatilityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RollingVolatility computes the moving standard deviation of a return
// series. The first window-1 observations have no defined value and are
// omitted from the result.
func RollingVolatility(returns *Frame, ticker string, window int) ([]VolatilityPoint, error) {
	if returns.IsEmpty() {
		return nil, fmt.Errorf("frame is empty")
	}
	if window < 2 {
		return nil, fmt.Errorf("window must be at least 2, got %d", window)
	}
	values, err := returns.Series(ticker)
	if err != nil {
		return nil, err
	}
	if len(values) < window {
		return nil, fmt.Errorf("series %s has %d observations, window is %d", ticker, len(values), window)
	}

	points := make([]VolatilityPoint, 0, len(values)-window+1)
	for end := window; end <= len(values); end++ {
		points = append(points, VolatilityPoint{
			Date:  returns.Dates[end-1],
			Value: stat.StdDev(values[end-window:end], nil),
		})
	}
	return points, nil
}
