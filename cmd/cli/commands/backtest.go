package commands

import (
	"alphafactory/cmd"
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest factor strategies",
}

var backtestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backtest and print the report",
	Long: `Loads adjusted closes, scores every ticker on a trailing window, holds the
top N each day and reports Sharpe and total return against a benchmark.

Strategies:
  momentum        mean of trailing returns
  low_volatility  negated stdev of trailing returns
  expression      a custom factor, e.g. --expression "mean / stdev"`,
}

var (
	btSymbols     string
	btStart       string
	btEnd         string
	btStrategy    string
	btWindow      int
	btTopN        int
	btExpression  string
	btBenchmark   string
	btNoBenchmark bool
	btFormat      string
	btOut         string
	btEmail       string
)

func init() {
	// assigned here rather than in the literal to avoid an initialization cycle
	backtestRunCmd.RunE = runBacktest

	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	f := backtestRunCmd.Flags()
	f.StringVar(&btSymbols, "symbols", "", "comma separated tickers, e.g. AAPL,MSFT,NVDA")
	f.StringVar(&btStart, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&btEnd, "end", "", "end date (YYYY-MM-DD), defaults to today")
	f.StringVar(&btStrategy, "strategy", "momentum", "momentum, low_volatility or expression")
	f.IntVar(&btWindow, "window", domain.DefaultWindow, "lookback window in trading days")
	f.IntVar(&btTopN, "top-n", 0, "number of tickers to hold (default min(3, #symbols))")
	f.StringVar(&btExpression, "expression", "", "factor expression over mean, stdev, last, growth and window")
	f.StringVar(&btBenchmark, "benchmark", domain.DefaultBenchmark, "benchmark ticker")
	f.BoolVar(&btNoBenchmark, "no-benchmark", false, "skip the benchmark comparison")
	f.StringVar(&btFormat, "format", "text", "report format: text, html or csv")
	f.StringVar(&btOut, "out", "", "write the report to this file instead of stdout")
	f.StringVar(&btEmail, "email", "", "also email the html report to this address")

	_ = backtestRunCmd.MarkFlagRequired("symbols")
	_ = backtestRunCmd.MarkFlagRequired("start")
}

func buildBacktestRequest() (*domain.BacktestRequest, error) {
	start, err := time.Parse(time.DateOnly, btStart)
	if err != nil {
		return nil, domain.ConfigurationError{Field: "start", Reason: err.Error()}
	}
	end := time.Now().UTC()
	if btEnd != "" {
		end, err = time.Parse(time.DateOnly, btEnd)
		if err != nil {
			return nil, domain.ConfigurationError{Field: "end", Reason: err.Error()}
		}
	}

	kind, err := domain.ParseStrategyKind(btStrategy)
	if err != nil {
		return nil, err
	}
	// an expression on its own implies the expression strategy
	if btExpression != "" && !backtestRunCmdFlagChanged("strategy") {
		kind = domain.StrategyKind_Expression
	}

	return &domain.BacktestRequest{
		Symbols: domain.ParseSymbols(btSymbols),
		Start:   start,
		End:     end,
		Strategy: domain.StrategyConfig{
			Kind:       kind,
			Window:     btWindow,
			TopN:       btTopN,
			Expression: btExpression,
		},
		Benchmark:   btBenchmark,
		NoBenchmark: btNoBenchmark,
	}, nil
}

func backtestRunCmdFlagChanged(name string) bool {
	f := backtestRunCmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func runBacktest(c *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.FromContext(ctx)

	req, err := buildBacktestRequest()
	if err != nil {
		return err
	}

	deps, err := initializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(deps)

	result, err := deps.BacktestService.Backtest(ctx, *req)
	if err != nil {
		return err
	}

	var report string
	switch strings.ToLower(btFormat) {
	case "text":
		report, err = deps.ReportService.RenderText(*result)
	case "html":
		report, err = deps.ReportService.RenderHtml(*result)
	case "csv":
		report, err = deps.ReportService.RenderSeriesCsv(*result)
	default:
		return domain.ConfigurationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", btFormat)}
	}
	if err != nil {
		return err
	}

	if btOut != "" {
		if err := os.WriteFile(btOut, []byte(report), 0o644); err != nil {
			return fmt.Errorf("failed to write report to %s: %w", btOut, err)
		}
		log.Infow("wrote report", "path", btOut, "format", btFormat)
	} else {
		fmt.Fprintln(c.OutOrStdout(), report)
	}

	if btEmail != "" {
		if err := deps.ReportService.EmailReport(ctx, btEmail, *result); err != nil {
			return fmt.Errorf("failed to email report: %w", err)
		}
		log.Infow("emailed report", "to", btEmail)
	}

	return nil
}
