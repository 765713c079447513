package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DescriptiveStats is the eight-number summary of a single series,
// values rounded to 2 decimals.
type DescriptiveStats struct {
	Series string  `json:"series"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// Describe summarizes every column of the frame, one row per series.
func Describe(f *Frame) ([]DescriptiveStats, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("frame is empty")
	}

	summary := make([]DescriptiveStats, 0, len(f.Tickers))
	for _, ticker := range f.Tickers {
		values := f.data[ticker]
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		summary = append(summary, DescriptiveStats{
			Series: ticker,
			Count:  len(values),
			Mean:   round2(stat.Mean(values, nil)),
			Std:    round2(stat.StdDev(values, nil)),
			Min:    round2(sorted[0]),
			P25:    round2(quantile(0.25, sorted)),
			P50:    round2(quantile(0.50, sorted)),
			P75:    round2(quantile(0.75, sorted)),
			Max:    round2(sorted[len(sorted)-1]),
		})
	}
	return summary, nil
}

// quantile interpolates linearly between order statistics (the R-7 rule),
// the interpolation pandas and numpy use by default. gonum's stat.Quantile
// only offers the empirical and R-4 estimators.
func quantile(p float64, sorted []float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(h)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
