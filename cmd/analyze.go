package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/Ruscigno/PortfolioPulse/feed"
	"github.com/Ruscigno/PortfolioPulse/models"
	"github.com/Ruscigno/PortfolioPulse/pkg/config"
	"github.com/Ruscigno/PortfolioPulse/pkg/service"
	"github.com/Ruscigno/PortfolioPulse/portfolio"
	"github.com/Ruscigno/PortfolioPulse/report"
	"github.com/spf13/cobra"
)

var (
	analyzeTickers   []string
	analyzeStart     string
	analyzeEnd       string
	analyzeExcel     bool
	analyzeReport    bool
	analyzeVolWindow int
	analyzeHistBins  int
)

// analyzeOptions carries the analyze flags into the pipeline.
type analyzeOptions struct {
	tickers    []string
	start, end string
	excel      bool
	report     bool
	volWindow  int
	histBins   int
}

// analyzeCmd runs the full analysis pipeline once and prints the results.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Download market data and run the portfolio analysis",
	Example: `  portfoliopulse analyze --tickers MSFT,TSLA,NVDA --start 2024-01-01 --end 2024-12-31
  portfoliopulse analyze --tickers MSFT,TSLA --start 2024-01-01 --report --excel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		consumer, err := feed.NewDataFeed(cfg.FeedProvider, cfg.LocalFeedDir)
		if err != nil {
			return err
		}

		return runAnalysis(context.Background(), consumer, cfg, analyzeOptions{
			tickers:   analyzeTickers,
			start:     analyzeStart,
			end:       analyzeEnd,
			excel:     analyzeExcel,
			report:    analyzeReport,
			volWindow: analyzeVolWindow,
			histBins:  analyzeHistBins,
		}, os.Stdout)
	},
}

// runAnalysis downloads each ticker exactly once and derives every output,
// console tables and files alike, from that one pair of frames.
func runAnalysis(ctx context.Context, consumer feed.FeedConsumer, cfg config.Config, opts analyzeOptions, out io.Writer) error {
	prices, returns, err := loadFrames(ctx, consumer, opts.tickers, opts.start, opts.end)
	if err != nil {
		return err
	}

	priceStats, err := analysis.Describe(prices)
	if err != nil {
		return err
	}
	returnStats, err := analysis.Describe(returns)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Descriptive statistics (prices):")
	report.WriteStatsTable(out, priceStats)
	fmt.Fprintln(out, "Descriptive statistics (log returns):")
	report.WriteStatsTable(out, returnStats)

	corr, err := analysis.Correlation(returns)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Correlation of returns:")
	report.WriteCorrelationTable(out, corr)

	est, err := portfolio.Estimate(returns)
	if err != nil {
		return err
	}
	weights, err := portfolio.MaxSharpe(est, cfg.RiskFreeRate)
	if err != nil {
		return err
	}
	perf, err := portfolio.Evaluate(est, weights, cfg.RiskFreeRate)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Optimal portfolio weights (max Sharpe):")
	report.WriteWeightsTable(out, weights, perf)

	if opts.excel {
		path := filepath.Join(cfg.ReportOutputDir, "data_download.xlsx")
		combined := append(priceStats, returnStats...)
		if err := report.GenerateExcel(prices, returns, combined, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Excel workbook saved to %s\n", path)
	}
	if opts.report {
		path, err := report.GenerateDocument(report.DocumentInput{
			Prices:           prices,
			Returns:          returns,
			Stats:            priceStats,
			Correlation:      corr,
			Weights:          weights,
			Performance:      perf,
			VolatilityWindow: opts.volWindow,
			HistogramBins:    opts.histBins,
		}, cfg.ReportOutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Report saved to %s\n", path)
	}
	return nil
}

// loadFrames downloads and aligns prices, one feed call per ticker.
func loadFrames(ctx context.Context, consumer feed.FeedConsumer, rawTickers []string, startDate, endDate string) (*analysis.Frame, *analysis.Frame, error) {
	tickers := service.NormalizeTickers(rawTickers)
	if len(tickers) == 0 {
		return nil, nil, fmt.Errorf("at least one ticker is required")
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	end := time.Now().UTC()
	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", endDate)
		}
		end = end.Add(24*time.Hour - time.Second)
	}

	data := make(map[string]*models.MarketData, len(tickers))
	for _, ticker := range tickers {
		md, err := consumer.DownloadMarketData(ctx, ticker, start, &end)
		if err != nil {
			return nil, nil, err
		}
		data[ticker] = md
	}

	prices, err := analysis.AlignPrices(data)
	if err != nil {
		return nil, nil, err
	}
	returns, err := prices.LogReturns()
	if err != nil {
		return nil, nil, err
	}
	return prices, returns, nil
}

func init() {
	RootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVar(&analyzeTickers, "tickers", nil, "ticker symbols, comma separated (e.g. MSFT,TSLA,NVDA)")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "start date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "end date (YYYY-MM-DD), defaults to today")
	analyzeCmd.Flags().BoolVar(&analyzeExcel, "excel", false, "write an Excel workbook with the downloaded data")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false, "write a Markdown analysis report with charts")
	analyzeCmd.Flags().IntVar(&analyzeVolWindow, "volatility-window", analysis.DefaultVolatilityWindow, "rolling volatility window in trading days")
	analyzeCmd.Flags().IntVar(&analyzeHistBins, "histogram-bins", analysis.DefaultHistogramBins, "number of bins for return histograms")
	_ = analyzeCmd.MarkFlagRequired("tickers")
	_ = analyzeCmd.MarkFlagRequired("start")
}
