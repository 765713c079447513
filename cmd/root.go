package cmd

import (
	"os"

	"github.com/Ruscigno/PortfolioPulse/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RootCmd is the base command for portfoliopulse.
var RootCmd = &cobra.Command{
	Use:   "portfoliopulse",
	Short: "Stock portfolio analysis on Yahoo Finance data",
	Long: `PortfolioPulse downloads daily market data from Yahoo Finance and
computes log returns, descriptive statistics, correlations, rolling
volatility and maximum Sharpe ratio portfolio weights, with Excel and
Markdown report output.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := logging.SetupLogger(viper.GetString("LOG_FILE"))
		zap.ReplaceGlobals(logger)
	},
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	viper.SetDefault("port", ":8080")
	viper.SetDefault(logging.LogLevelKey, "debug")
	viper.SetDefault("LOG_FILE", "portfoliopulse.log")
	viper.AutomaticEnv()
}
