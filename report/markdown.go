package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/Ruscigno/PortfolioPulse/portfolio"
	"go.uber.org/zap"
)

// DocumentInput bundles everything the analysis document needs.
type DocumentInput struct {
	Prices           *analysis.Frame
	Returns          *analysis.Frame
	Stats            []analysis.DescriptiveStats
	Correlation      *analysis.CorrelationMatrix
	Weights          portfolio.Weights
	Performance      *portfolio.Performance
	VolatilityWindow int
	HistogramBins    int
}

// GenerateDocument writes the investment analysis report as Markdown with
// PNG charts alongside it. Returns the path of the written report.
func GenerateDocument(in DocumentInput, outputDir string) (string, error) {
	if in.Prices.IsEmpty() {
		return "", fmt.Errorf("price frame is empty")
	}
	if in.VolatilityWindow < 2 {
		in.VolatilityWindow = analysis.DefaultVolatilityWindow
	}
	if in.HistogramBins < 1 {
		in.HistogramBins = analysis.DefaultHistogramBins
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Investment Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated %s. ", time.Now().Format("2006-01-02 15:04"))
	b.WriteString("This report contains the optimal portfolio weights, descriptive statistics ")
	b.WriteString("of the selected assets and charts of their performance and risk.\n\n")

	writeStatsSection(&b, in.Stats)
	if err := writePriceSection(&b, in, outputDir); err != nil {
		return "", err
	}
	writeWeightsSection(&b, in.Weights, in.Performance)
	writeCorrelationSection(&b, in.Correlation)
	if err := writeVolatilitySection(&b, in, outputDir); err != nil {
		return "", err
	}
	if err := writeBoxPlotSection(&b, in, outputDir); err != nil {
		return "", err
	}
	if err := writeHistogramSection(&b, in, outputDir); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, "investment_analysis.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	zap.L().Info("Report written", zap.String("path", path))
	return path, nil
}

func writeStatsSection(b *strings.Builder, stats []analysis.DescriptiveStats) {
	b.WriteString("## Descriptive Statistics\n\n")
	if len(stats) == 0 {
		b.WriteString("No statistics available.\n\n")
		return
	}
	b.WriteString("| Series | Count | Mean | Std | Min | 25% | 50% | 75% | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, s := range stats {
		fmt.Fprintf(b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			s.Series, s.Count, s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max)
	}
	b.WriteString("\n")
}

func writePriceSection(b *strings.Builder, in DocumentInput, outputDir string) error {
	b.WriteString("## Performance Charts\n\n")
	chartPath := filepath.Join(outputDir, "price_series.png")
	if err := SavePriceChart(in.Prices, chartPath); err != nil {
		return fmt.Errorf("failed to render price chart: %w", err)
	}
	fmt.Fprintf(b, "![Price Series](%s)\n\n", filepath.Base(chartPath))
	return nil
}

func writeWeightsSection(b *strings.Builder, weights portfolio.Weights, perf *portfolio.Performance) {
	b.WriteString("## Optimal Portfolio Weights\n\n")
	if len(weights) == 0 {
		b.WriteString("No optimal weights were computed.\n\n")
		return
	}
	for _, ticker := range weights.SortedTickers() {
		fmt.Fprintf(b, "- %s: %.2f%%\n", ticker, weights[ticker]*100)
	}
	b.WriteString("\n")
	if perf != nil {
		fmt.Fprintf(b, "Expected annual return %.1f%%, annual volatility %.1f%%, Sharpe ratio %.2f.\n\n",
			perf.ExpectedReturn*100, perf.Volatility*100, perf.SharpeRatio)
	}
}

func writeCorrelationSection(b *strings.Builder, matrix *analysis.CorrelationMatrix) {
	b.WriteString("## Correlation of Returns\n\n")
	if matrix == nil || len(matrix.Tickers) == 0 {
		b.WriteString("No correlation matrix available.\n\n")
		return
	}
	b.WriteString("| |")
	for _, t := range matrix.Tickers {
		fmt.Fprintf(b, " %s |", t)
	}
	b.WriteString("\n|---|")
	for range matrix.Tickers {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, t := range matrix.Tickers {
		fmt.Fprintf(b, "| %s |", t)
		for j := range matrix.Tickers {
			fmt.Fprintf(b, " %.2f |", matrix.Values[i][j])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeVolatilitySection(b *strings.Builder, in DocumentInput, outputDir string) error {
	b.WriteString("## Rolling Volatility\n\n")
	for _, ticker := range in.Returns.Tickers {
		points, err := analysis.RollingVolatility(in.Returns, ticker, in.VolatilityWindow)
		if err != nil {
			// Short series for this window, note it and move on.
			fmt.Fprintf(b, "Rolling volatility unavailable for %s: %v\n\n", ticker, err)
			continue
		}
		chartPath := filepath.Join(outputDir, fmt.Sprintf("volatility_%s.png", ticker))
		if err := SaveVolatilityChart(points, ticker, in.VolatilityWindow, chartPath); err != nil {
			return fmt.Errorf("failed to render volatility chart for %s: %w", ticker, err)
		}
		fmt.Fprintf(b, "![Rolling Volatility %s](%s)\n\n", ticker, filepath.Base(chartPath))
	}
	return nil
}

func writeBoxPlotSection(b *strings.Builder, in DocumentInput, outputDir string) error {
	b.WriteString("## Box Plot of Returns\n\n")
	chartPath := filepath.Join(outputDir, "returns_box_plot.png")
	if err := SaveReturnsBoxPlot(in.Returns, chartPath); err != nil {
		return fmt.Errorf("failed to render box plot: %w", err)
	}
	fmt.Fprintf(b, "![Box Plot of Returns](%s)\n\n", filepath.Base(chartPath))
	return nil
}

func writeHistogramSection(b *strings.Builder, in DocumentInput, outputDir string) error {
	b.WriteString("## Histograms of Returns\n\n")
	for _, ticker := range in.Returns.Tickers {
		chartPath := filepath.Join(outputDir, fmt.Sprintf("histogram_%s.png", ticker))
		if err := SaveReturnsHistogram(in.Returns, ticker, in.HistogramBins, chartPath); err != nil {
			return fmt.Errorf("failed to render histogram for %s: %w", ticker, err)
		}
		fmt.Fprintf(b, "![Histogram %s](%s)\n\n", ticker, filepath.Base(chartPath))
	}
	return nil
}
