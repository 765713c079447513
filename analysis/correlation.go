package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a symmetric Pearson correlation matrix over the
// frame's columns, in Tickers order.
type CorrelationMatrix struct {
	Tickers []string    `json:"tickers"`
	Values  [][]float64 `json:"values"`
}

// Correlation computes the pairwise Pearson correlation of every column,
// typically applied to a log-return frame.
func Correlation(f *Frame) (*CorrelationMatrix, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("frame is empty")
	}
	if f.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 rows to correlate, have %d", f.Len())
	}

	n := len(f.Tickers)
	matrix := &CorrelationMatrix{
		Tickers: append([]string(nil), f.Tickers...),
		Values:  make([][]float64, n),
	}
	for i := range matrix.Values {
		matrix.Values[i] = make([]float64, n)
		matrix.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := stat.Correlation(f.data[f.Tickers[i]], f.data[f.Tickers[j]], nil)
			matrix.Values[i][j] = c
			matrix.Values[j][i] = c
		}
	}
	return matrix, nil
}
