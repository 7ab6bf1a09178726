package commands

import (
	"alphafactory/cmd"
	"alphafactory/internal/util"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile    string
	priceProvider string
	csvPath       string
	parquetDir    string
)

var rootCmd = &cobra.Command{
	Use:   "alphafactory",
	Short: "Factor strategy backtester",
	Long: `AlphaFactory ranks a basket of tickers on a rolling factor, holds the
top N equally weighted each day, and compares the result to a benchmark.

Examples:
  alphafactory backtest run --symbols AAPL,MSFT,NVDA --start 2023-01-01 --end 2024-01-01
  alphafactory backtest run --symbols AAPL,MSFT --strategy "Low Volatility" --format html --out report.html`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default picked by ALPHA_ENV)")
	rootCmd.PersistentFlags().StringVar(&priceProvider, "provider", "", "price provider: yahoo, alpaca, csv, parquet or postgres")
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "price csv with date,symbol,price rows (implies --provider csv)")
	rootCmd.PersistentFlags().StringVar(&parquetDir, "parquet-dir", "", "directory of <SYMBOL>.parquet bar files (implies --provider parquet)")
}

func loadConfig() (*util.Config, error) {
	if configFile != "" {
		os.Setenv("ALPHA_CONFIG", configFile)
	}
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if csvPath != "" {
		cfg.PriceProvider = "csv"
		cfg.Csv.Path = csvPath
	}
	if parquetDir != "" {
		cfg.PriceProvider = "parquet"
		cfg.Parquet.DataDir = parquetDir
	}
	if priceProvider != "" {
		cfg.PriceProvider = priceProvider
	}
	return cfg, nil
}

func initializeDependencies() (*cmd.Dependencies, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cmd.InitializeDependenciesFromConfig(*cfg)
}
