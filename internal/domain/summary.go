package domain

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceSummary is derived once from a portfolio return series
// and never mutated afterwards
type PerformanceSummary struct {
	AnnualizedSharpe     float64
	TotalReturn          float64
	AnnualizedVolatility float64
	Periods              int
	Start                time.Time
	End                  time.Time
}

// StrategyResult is the full output of one engine run
type StrategyResult struct {
	Scores           ScorePanel
	Selections       []Selection
	PortfolioReturns ReturnSeries
	Cumulative       CumulativeSeries
	Summary          PerformanceSummary
}

type BenchmarkResult struct {
	Symbol     string
	Returns    ReturnSeries
	Cumulative CumulativeSeries
	Summary    PerformanceSummary
}

type BacktestResult struct {
	RunID     uuid.UUID
	Request   BacktestRequest
	Strategy  StrategyResult
	Benchmark *BenchmarkResult
}

// Outperformed reports whether the strategy beat the benchmark on
// total return. False when there is no benchmark.
func (r BacktestResult) Outperformed() bool {
	if r.Benchmark == nil {
		return false
	}
	return r.Strategy.Summary.TotalReturn > r.Benchmark.Summary.TotalReturn
}
