package service

import (
	"alphafactory/internal/calculator"
	"alphafactory/internal/domain"
	"alphafactory/internal/repository"
	"alphafactory/internal/util"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type BenchmarkService interface {
	// Compare runs the benchmark through the strategy pipeline. Returns
	// are taken between the strategy's price sessions so each one spans
	// the same period as the strategy's, then held over exactly the
	// scored dates.
	Compare(ctx context.Context, symbol string, start, end time.Time, sessions, dates []time.Time) (*domain.BenchmarkResult, error)
	// GetIntraPeriodChange is the % change from the first available
	// price, sampled every granularity
	GetIntraPeriodChange(ctx context.Context, symbol string, start, end time.Time, granularity time.Duration) (map[time.Time]float64, error)
}

type benchmarkServiceHandler struct {
	PriceRepository repository.PriceRepository
	PriceService    PriceService
	Engine          calculator.StrategyEngine
}

func NewBenchmarkService(priceRepository repository.PriceRepository, priceService PriceService, engine calculator.StrategyEngine) BenchmarkService {
	return benchmarkServiceHandler{
		PriceRepository: priceRepository,
		PriceService:    priceService,
		Engine:          engine,
	}
}

func (h benchmarkServiceHandler) Compare(ctx context.Context, symbol string, start, end time.Time, sessions, dates []time.Time) (*domain.BenchmarkResult, error) {
	panel, err := h.PriceService.LoadPricePanel(ctx, []string{symbol}, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load benchmark %s: %w", symbol, err)
	}
	aligned, err := panel.RestrictTo(sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to align benchmark %s with strategy sessions: %w", symbol, err)
	}
	return h.Engine.RunBenchmark(ctx, aligned, symbol, dates)
}

func (h benchmarkServiceHandler) GetIntraPeriodChange(ctx context.Context, symbol string, start, end time.Time, granularity time.Duration) (map[time.Time]float64, error) {
	prices, err := h.PriceRepository.List(ctx, []string{symbol}, start, end)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, domain.NoDataError{
			Symbols: []string{symbol},
			Reason:  fmt.Sprintf("no prices between %s and %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
		}
	}
	for _, p := range prices {
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("invalid price %s for %s on %s", p.Price.String(), p.Symbol, domain.DateKey(p.Date))
		}
	}
	if granularity < 24*time.Hour {
		granularity = 24 * time.Hour
	}
	return intraPeriodChangeIterator(prices, end, granularity), nil
}

// walks the prices in date order, emitting the change since the first
// price each time the next sampling target is reached
func intraPeriodChangeIterator(
	prices []domain.AssetPrice,
	end time.Time,
	granularity time.Duration,
) map[time.Time]float64 {
	prices = append([]domain.AssetPrice{}, prices...)
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})

	first := prices[0].Price
	out := map[time.Time]float64{
		prices[0].Date: 0,
	}
	nextTarget := prices[0].Date.Add(granularity)
	for i := 1; i < len(prices) && util.DateLte(prices[i].Date, end); i++ {
		for domain.DateKey(nextTarget) < domain.DateKey(prices[i].Date) {
			nextTarget = nextTarget.Add(24 * time.Hour)
		}
		if domain.DateKey(prices[i].Date) == domain.DateKey(nextTarget) {
			out[nextTarget] = decimal.NewFromInt(100).Mul(prices[i].Price.Sub(first)).Div(first).InexactFloat64()
			nextTarget = nextTarget.Add(granularity)
		}
	}

	return out
}
