package cmd

import (
	"net/http"

	"github.com/Ruscigno/PortfolioPulse/feed"
	"github.com/Ruscigno/PortfolioPulse/pkg/config"
	"github.com/Ruscigno/PortfolioPulse/pkg/database"
	"github.com/Ruscigno/PortfolioPulse/pkg/endpoint"
	"github.com/Ruscigno/PortfolioPulse/pkg/metrics"
	"github.com/Ruscigno/PortfolioPulse/pkg/repository"
	"github.com/Ruscigno/PortfolioPulse/pkg/service"
	httptransport "github.com/Ruscigno/PortfolioPulse/pkg/transport/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveWithDB bool

// serveCmd starts the HTTP analysis API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio analysis HTTP API",
	Long:  `Starts an HTTP server exposing download, stats, correlation, weights, report and health endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.L()
		cfg := config.LoadConfig()

		consumer, err := feed.NewDataFeed(cfg.FeedProvider, cfg.LocalFeedDir)
		if err != nil {
			return err
		}

		var repo repository.CandleRepository
		var health service.HealthChecker
		if serveWithDB {
			db, err := database.NewDB(database.DefaultConfig(cfg.DatabaseURL), logger)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				return err
			}
			repo = repository.NewCandleRepository(db.DB, logger)
			health = db
		}

		svc := service.NewService(consumer, repo, health, cfg, logger,
			metrics.NewSimpleMetricsCollector(logger))
		endpoints := endpoint.MakeEndpoints(svc)
		handler := httptransport.NewHTTPHandler(endpoints, httptransport.HTTPConfig{
			RequestsPerSecond: cfg.RateLimitPerSec,
			BurstSize:         cfg.RateLimitBurst,
			Logger:            logger,
		})

		logger.Info("Starting server", zap.String("port", cfg.HTTPPort))
		if err := http.ListenAndServe(cfg.HTTPPort, handler); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveWithDB, "with-db", false, "connect to Postgres and persist downloaded candles")
}
