package cmd

import (
	"context"

	"github.com/Ruscigno/PortfolioPulse/feed"
	"github.com/Ruscigno/PortfolioPulse/ingest"
	"github.com/Ruscigno/PortfolioPulse/pkg/config"
	"github.com/Ruscigno/PortfolioPulse/pkg/database"
	"github.com/Ruscigno/PortfolioPulse/pkg/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ingestCmd runs the candle ingestion workers.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the market data ingestion workers",
	Long: `Starts one worker per symbol from the symbol list file. Each worker
backfills from the last stored candle and then refreshes on the configured
interval until the process receives SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.L()
		cfg := config.LoadConfig()

		db, err := database.NewDB(database.DefaultConfig(cfg.DatabaseURL), logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.RunMigrations(); err != nil {
			return err
		}

		consumer, err := feed.NewDataFeed(cfg.FeedProvider, cfg.LocalFeedDir)
		if err != nil {
			return err
		}
		repo := repository.NewCandleRepository(db.DB, logger)
		scraper := ingest.NewStockScrapper(consumer, repo, cfg.IngestLookback, logger)
		server := ingest.NewServer(scraper, cfg.IngestInterval, logger)

		return server.Start(context.Background(), cfg.SymbolListFile)
	},
}

func init() {
	RootCmd.AddCommand(ingestCmd)
}
