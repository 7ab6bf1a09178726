package service

import (
	"alphafactory/internal/calculator"
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"context"
	"fmt"

	"github.com/google/uuid"
)

type BacktestService interface {
	Backtest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error)
}

type backtestServiceHandler struct {
	PriceService     PriceService
	BenchmarkService BenchmarkService
	Engine           calculator.StrategyEngine
}

func NewBacktestService(priceService PriceService, benchmarkService BenchmarkService, engine calculator.StrategyEngine) BacktestService {
	return backtestServiceHandler{
		PriceService:     priceService,
		BenchmarkService: benchmarkService,
		Engine:           engine,
	}
}

// Backtest loads prices, runs the strategy and, unless disabled, the
// benchmark comparison. Any failure aborts the whole run.
func (h backtestServiceHandler) Backtest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error) {
	runID := uuid.New()
	log := logger.FromContext(ctx).With("runID", runID.String())
	ctx = logger.WithContext(ctx, log)

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log.Infow("starting backtest",
		"symbols", req.Symbols,
		"start", domain.DateKey(req.Start),
		"end", domain.DateKey(req.End),
		"strategy", req.Strategy.Kind,
		"window", req.Strategy.Window,
		"topN", req.Strategy.TopN,
	)

	panel, err := h.PriceService.LoadPricePanel(ctx, req.Symbols, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	strategyResult, err := h.Engine.Run(ctx, *panel, req.Strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s strategy: %w", req.Strategy.Kind, err)
	}

	result := &domain.BacktestResult{
		RunID:    runID,
		Request:  req,
		Strategy: *strategyResult,
	}

	if !req.NoBenchmark {
		benchmark, err := h.BenchmarkService.Compare(
			ctx,
			req.Benchmark,
			req.Start,
			req.End,
			panel.Dates,
			strategyResult.PortfolioReturns.Dates(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to compare against %s: %w", req.Benchmark, err)
		}
		result.Benchmark = benchmark
	}

	log.Infow("finished backtest",
		"sharpe", result.Strategy.Summary.AnnualizedSharpe,
		"totalReturn", result.Strategy.Summary.TotalReturn,
		"outperformed", result.Outperformed(),
	)

	return result, nil
}
