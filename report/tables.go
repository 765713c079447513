// Package report renders analysis results to the console, to Excel
// workbooks, to PNG charts and to a Markdown document.
package report

import (
	"fmt"
	"io"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/Ruscigno/PortfolioPulse/portfolio"
	"github.com/olekukonko/tablewriter"
)

// WriteStatsTable renders descriptive statistics as an ASCII table.
func WriteStatsTable(w io.Writer, stats []analysis.DescriptiveStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Series", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"})
	for _, s := range stats {
		table.Append([]string{
			s.Series,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.Std),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.P25),
			fmt.Sprintf("%.2f", s.P50),
			fmt.Sprintf("%.2f", s.P75),
			fmt.Sprintf("%.2f", s.Max),
		})
	}
	table.Render()
}

// WriteWeightsTable renders optimal weights and the resulting portfolio
// performance.
func WriteWeightsTable(w io.Writer, weights portfolio.Weights, perf *portfolio.Performance) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ticker", "Optimal Weight"})
	for _, ticker := range weights.SortedTickers() {
		table.Append([]string{ticker, fmt.Sprintf("%.2f%%", weights[ticker]*100)})
	}
	table.Render()

	if perf != nil {
		fmt.Fprintf(w, "Expected annual return: %.1f%%\n", perf.ExpectedReturn*100)
		fmt.Fprintf(w, "Annual volatility: %.1f%%\n", perf.Volatility*100)
		fmt.Fprintf(w, "Sharpe Ratio: %.2f\n", perf.SharpeRatio)
	}
}

// WriteCorrelationTable renders a correlation matrix.
func WriteCorrelationTable(w io.Writer, matrix *analysis.CorrelationMatrix) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{""}, matrix.Tickers...))
	for i, ticker := range matrix.Tickers {
		row := make([]string, 0, len(matrix.Tickers)+1)
		row = append(row, ticker)
		for j := range matrix.Tickers {
			row = append(row, fmt.Sprintf("%.2f", matrix.Values[i][j]))
		}
		table.Append(row)
	}
	table.Render()
}

// WriteQuotesTable renders live quote rows.
func WriteQuotesTable(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Price", "Change", "Change %", "Exchange"})
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}
