package cmd

import (
	"fmt"
	"os"

	"github.com/Ruscigno/PortfolioPulse/feed"
	"github.com/Ruscigno/PortfolioPulse/pkg/service"
	"github.com/Ruscigno/PortfolioPulse/report"
	"github.com/spf13/cobra"
)

// quoteCmd prints live quotes for the given symbols.
var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL [SYMBOL...]",
	Short: "Print live quotes for one or more symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols := service.NormalizeTickers(args)
		quotes, err := feed.LiveQuotes(symbols)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(quotes))
		for _, q := range quotes {
			rows = append(rows, []string{
				q.Symbol,
				fmt.Sprintf("%.2f", q.RegularMarketPrice),
				fmt.Sprintf("%+.2f", q.RegularMarketChange),
				fmt.Sprintf("%+.2f%%", q.RegularMarketChangePercent),
				q.FullExchangeName,
			})
		}
		report.WriteQuotesTable(os.Stdout, rows)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(quoteCmd)
}
