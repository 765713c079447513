package report

import (
	"fmt"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
)

// SavePriceChart writes a line chart of adjusted close prices, one line
// per ticker, to a PNG file.
func SavePriceChart(prices *analysis.Frame, path string) error {
	if prices.IsEmpty() {
		return fmt.Errorf("price frame is empty")
	}

	p := plot.New()
	p.Title.Text = "Historical Stock Prices"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Adjusted Close"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true

	for i, ticker := range prices.Tickers {
		series, err := prices.Series(ticker)
		if err != nil {
			return err
		}
		xys := make(plotter.XYs, len(series))
		for j, v := range series {
			xys[j].X = float64(prices.Dates[j].Unix())
			xys[j].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build line for %s: %w", ticker, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(ticker, line)
	}

	return p.Save(chartWidth, chartHeight, path)
}

// SaveVolatilityChart writes the rolling volatility of one ticker to a
// PNG file.
func SaveVolatilityChart(points []analysis.VolatilityPoint, ticker string, window int, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no volatility points for %s", ticker)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Rolling Volatility (%s)", ticker)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Standard Deviation"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = pt.Value
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to build volatility line: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("Volatility (%d days)", window), line)
	p.Legend.Top = true

	return p.Save(chartWidth, chartHeight, path)
}

// SaveReturnsBoxPlot writes a box plot of log returns, one box per
// ticker, to a PNG file.
func SaveReturnsBoxPlot(returns *analysis.Frame, path string) error {
	if returns.IsEmpty() {
		return fmt.Errorf("return frame is empty")
	}

	p := plot.New()
	p.Title.Text = "Box Plot of Log Returns"
	p.Y.Label.Text = "Log Return"

	for i, ticker := range returns.Tickers {
		series, err := returns.Series(ticker)
		if err != nil {
			return err
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(series))
		if err != nil {
			return fmt.Errorf("failed to build box plot for %s: %w", ticker, err)
		}
		p.Add(box)
	}
	p.NominalX(returns.Tickers...)

	return p.Save(chartWidth, chartHeight, path)
}

// SaveReturnsHistogram writes a histogram of a ticker's log returns to a
// PNG file.
func SaveReturnsHistogram(returns *analysis.Frame, ticker string, bins int, path string) error {
	series, err := returns.Series(ticker)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Histogram of Returns - %s", ticker)
	p.X.Label.Text = "Return"
	p.Y.Label.Text = "Frequency"

	hist, err := plotter.NewHist(plotter.Values(series), bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(hist)

	return p.Save(chartWidth, chartHeight, path)
}
