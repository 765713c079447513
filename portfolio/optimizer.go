// Package portfolio estimates annualized return and risk from daily log
// returns and solves for the maximum Sharpe ratio allocation.
package portfolio

import (
	"fmt"
	"math"
	"sort"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear is the annualization frequency for daily series.
	TradingDaysPerYear = 252

	// DefaultRiskFreeRate is the annual risk-free rate used for the
	// Sharpe ratio when none is configured.
	DefaultRiskFreeRate = 0.02

	// weightCutoff zeroes dust allocations when cleaning weights.
	weightCutoff = 1e-4
)

// Estimates holds annualized expected returns and the annualized
// covariance matrix for a set of assets, in Tickers order.
type Estimates struct {
	Tickers []string
	Mu      []float64
	Sigma   *mat.SymDense
}

// Weights maps ticker to portfolio allocation. Cleaned weights sum to 1.
type Weights map[string]float64

// Performance summarizes a portfolio allocation.
type Performance struct {
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// Estimate computes annualized expected returns (compounded from the mean
// daily log return over 252 trading days) and the annualized sample
// covariance of the given log-return frame.
func Estimate(returns *analysis.Frame) (*Estimates, error) {
	if returns.IsEmpty() {
		return nil, fmt.Errorf("return frame is empty")
	}
	if returns.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 return observations, have %d", returns.Len())
	}

	n := len(returns.Tickers)
	rows := returns.Len()

	mu := make([]float64, n)
	observations := mat.NewDense(rows, n, nil)
	for j, ticker := range returns.Tickers {
		series, err := returns.Series(ticker)
		if err != nil {
			return nil, err
		}
		mu[j] = math.Expm1(float64(TradingDaysPerYear) * stat.Mean(series, nil))
		observations.SetCol(j, series)
	}

	sigma := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(sigma, observations, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sigma.SetSym(i, j, sigma.At(i, j)*TradingDaysPerYear)
		}
	}

	return &Estimates{
		Tickers: append([]string(nil), returns.Tickers...),
		Mu:      mu,
		Sigma:   sigma,
	}, nil
}

// MaxSharpe solves the tangency portfolio w ∝ Σ⁻¹(μ − rf·1) and projects
// it onto long-only allocations by zeroing negative weights and
// renormalizing. The result is cleaned: rounded to 5 decimals with dust
// positions dropped.
func MaxSharpe(est *Estimates, riskFree float64) (Weights, error) {
	n := len(est.Tickers)
	if n == 0 {
		return nil, fmt.Errorf("no assets to allocate")
	}
	if n == 1 {
		return Weights{est.Tickers[0]: 1}, nil
	}

	excess := mat.NewVecDense(n, nil)
	for i, m := range est.Mu {
		excess.SetVec(i, m-riskFree)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(est.Sigma); !ok {
		return nil, fmt.Errorf("covariance matrix is not positive definite")
	}
	raw := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(raw, excess); err != nil {
		return nil, fmt.Errorf("failed to solve for tangency weights: %w", err)
	}

	var total float64
	for i := 0; i < n; i++ {
		if v := raw.AtVec(i); v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return nil, fmt.Errorf("no asset offers an expected return above the risk-free rate")
	}

	weights := make(Weights, n)
	for i, ticker := range est.Tickers {
		w := raw.AtVec(i)
		if w < 0 {
			w = 0
		}
		w = math.Round(w/total*1e5) / 1e5
		if w < weightCutoff {
			w = 0
		}
		weights[ticker] = w
	}
	return weights, nil
}

// Evaluate reports expected return, volatility and Sharpe ratio for an
// allocation against the estimates.
func Evaluate(est *Estimates, weights Weights, riskFree float64) (*Performance, error) {
	n := len(est.Tickers)
	if n == 0 {
		return nil, fmt.Errorf("no assets in estimates")
	}

	w := mat.NewVecDense(n, nil)
	for i, ticker := range est.Tickers {
		w.SetVec(i, weights[ticker])
	}

	expected := mat.Dot(w, mat.NewVecDense(n, est.Mu))

	var sw mat.VecDense
	sw.MulVec(est.Sigma, w)
	variance := mat.Dot(w, &sw)
	if variance < 0 {
		return nil, fmt.Errorf("negative portfolio variance %f", variance)
	}
	volatility := math.Sqrt(variance)

	perf := &Performance{
		ExpectedReturn: expected,
		Volatility:     volatility,
	}
	if volatility > 0 {
		perf.SharpeRatio = (expected - riskFree) / volatility
	}
	return perf, nil
}

// SortedTickers returns the allocation's tickers ordered by descending
// weight, ties broken alphabetically. Used for stable report output.
func (w Weights) SortedTickers() []string {
	tickers := make([]string, 0, len(w))
	for ticker := range w {
		tickers = append(tickers, ticker)
	}
	sort.Slice(tickers, func(i, j int) bool {
		if w[tickers[i]] != w[tickers[j]] {
			return w[tickers[i]] > w[tickers[j]]
		}
		return tickers[i] < tickers[j]
	})
	return tickers
}
