package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultHistogramBins matches the bin count the analysis reports use by
// default.
const DefaultHistogramBins = 30

// HistogramBin is a half-open bin [Low, High) with the count of
// observations that fell into it. The final bin includes its upper edge.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram buckets a return series into bins of equal width spanning
// [min, max].
func Histogram(returns *Frame, ticker string, bins int) ([]HistogramBin, error) {
	if returns.IsEmpty() {
		return nil, fmt.Errorf("frame is empty")
	}
	if bins < 1 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	values, err := returns.Series(ticker)
	if err != nil {
		return nil, err
	}

	min, max := floats.Min(values), floats.Max(values)
	if min == max {
		// Degenerate series, one bin holds everything.
		return []HistogramBin{{Low: min, High: max, Count: len(values)}}, nil
	}

	width := (max - min) / float64(bins)
	result := make([]HistogramBin, bins)
	for i := range result {
		result[i].Low = min + float64(i)*width
		result[i].High = min + float64(i+1)*width
	}
	for _, v := range values {
		i := int((v - min) / width)
		if i == bins {
			i = bins - 1
		}
		result[i].Count++
	}
	return result, nil
}
