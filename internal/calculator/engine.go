package calculator

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"context"
	"fmt"
	"time"
)

// StrategyEngine runs the ranking and rebalancing pipeline over a
// price panel. It holds no state between runs.
type StrategyEngine struct{}

func NewStrategyEngine() StrategyEngine {
	return StrategyEngine{}
}

// Run executes returns -> scores -> selection -> aggregation ->
// summary. Either a complete result or an error comes back, never
// anything partial.
func (e StrategyEngine) Run(ctx context.Context, panel domain.PricePanel, cfg domain.StrategyConfig) (*domain.StrategyResult, error) {
	log := logger.FromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TopN > panel.NumSymbols() {
		return nil, domain.ConfigurationError{
			Field:  "topN",
			Reason: fmt.Sprintf("top %d exceeds %d symbol(s)", cfg.TopN, panel.NumSymbols()),
		}
	}
	if panel.NumDates() < cfg.Window+1 {
		return nil, domain.InsufficientDataError{
			Required: cfg.Window + 1,
			Got:      panel.NumDates(),
			Reason:   fmt.Sprintf("a %d period window needs window+1 price dates", cfg.Window),
		}
	}

	endSpan := domain.StartSpan(ctx, "computing returns")
	returns, err := ComputeReturns(panel)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to compute returns: %w", err)
	}

	endSpan = domain.StartSpan(ctx, "computing scores")
	scores, err := ScoreStrategy(returns, cfg)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s scores: %w", cfg.Kind, err)
	}

	endSpan = domain.StartSpan(ctx, "selecting top symbols")
	selections, err := SelectAll(scores, cfg.TopN)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to select top %d: %w", cfg.TopN, err)
	}

	endSpan = domain.StartSpan(ctx, "aggregating portfolio")
	portfolioReturns, err := AggregatePortfolio(returns, selections)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate portfolio: %w", err)
	}
	cumulative := CumulativeGrowth(portfolioReturns)

	summary, err := Summarize(portfolioReturns, cumulative)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize portfolio: %w", err)
	}

	log.Debugw("strategy run complete",
		"strategy", cfg.Kind,
		"window", cfg.Window,
		"topN", cfg.TopN,
		"scoredDates", scores.NumDates(),
		"sharpe", summary.AnnualizedSharpe,
		"totalReturn", summary.TotalReturn,
	)

	return &domain.StrategyResult{
		Scores:           scores,
		Selections:       selections,
		PortfolioReturns: portfolioReturns,
		Cumulative:       cumulative,
		Summary:          summary,
	}, nil
}

// RunBenchmark pushes a single reference symbol through the same
// pipeline, holding it on exactly the given dates
func (e StrategyEngine) RunBenchmark(ctx context.Context, panel domain.PricePanel, symbol string, dates []time.Time) (*domain.BenchmarkResult, error) {
	if _, ok := panel.SymbolIndex(symbol); !ok {
		return nil, domain.NoDataError{Symbols: []string{symbol}, Reason: "benchmark missing from price panel"}
	}

	endSpan := domain.StartSpan(ctx, "computing benchmark")
	defer endSpan()

	returns, err := ComputeReturns(panel)
	if err != nil {
		return nil, fmt.Errorf("failed to compute benchmark returns: %w", err)
	}

	selections := make([]domain.Selection, len(dates))
	for i, d := range dates {
		selections[i] = domain.Selection{
			Date:    d,
			Symbols: []string{symbol},
		}
	}
	benchmarkReturns, err := AggregatePortfolio(returns, selections)
	if err != nil {
		return nil, fmt.Errorf("failed to align benchmark %s with strategy dates: %w", symbol, err)
	}
	cumulative := CumulativeGrowth(benchmarkReturns)

	summary, err := Summarize(benchmarkReturns, cumulative)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize benchmark %s: %w", symbol, err)
	}

	return &domain.BenchmarkResult{
		Symbol:     symbol,
		Returns:    benchmarkReturns,
		Cumulative: cumulative,
		Summary:    summary,
	}, nil
}
