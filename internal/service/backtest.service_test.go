package service

import (
	"alphafactory/internal/calculator"
	"alphafactory/internal/domain"
	mock_repository "alphafactory/internal/repository/mocks"
	"alphafactory/internal/util"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestBacktestService(t *testing.T) (BacktestService, *mock_repository.MockPriceRepository) {
	ctrl := gomock.NewController(t)
	priceRepository := mock_repository.NewMockPriceRepository(ctrl)
	engine := calculator.NewStrategyEngine()
	priceService := NewPriceService(priceRepository)
	benchmarkService := NewBenchmarkService(priceRepository, priceService, engine)
	return NewBacktestService(priceService, benchmarkService, engine), priceRepository
}

func TestBacktestService_Backtest(t *testing.T) {
	start := util.NewDate(2024, 1, 1)
	end := util.NewDate(2024, 1, 31)
	basket := map[string][]float64{
		"AAPL": {100, 102, 101, 105, 107, 106, 110, 111},
		"MSFT": {50, 49, 51, 50, 48, 49, 47, 48},
		"NVDA": {20, 21, 22, 21, 23, 24, 24, 26},
	}
	spy := map[string][]float64{
		"SPY": {400, 401, 399, 405, 404, 407, 409, 408},
	}

	t.Run("strategy and benchmark", func(t *testing.T) {
		handler, priceRepository := newTestBacktestService(t)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"AAPL", "MSFT", "NVDA"}, start, end).
			Return(longPrices(basket), nil)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"SPY"}, start, end).
			Return(longPrices(spy), nil)

		result, err := handler.Backtest(context.Background(), domain.BacktestRequest{
			Symbols: []string{"aapl", "msft", "nvda"},
			Start:   start,
			End:     end,
			Strategy: domain.StrategyConfig{
				Kind:   domain.StrategyKind_Momentum,
				Window: 3,
				TopN:   2,
			},
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, result.RunID)
		require.Equal(t, "SPY", result.Request.Benchmark)

		require.NotNil(t, result.Benchmark)
		require.Equal(t, result.Strategy.PortfolioReturns.Dates(), result.Benchmark.Returns.Dates())
		require.Equal(
			t,
			result.Strategy.Summary.TotalReturn > result.Benchmark.Summary.TotalReturn,
			result.Outperformed(),
		)
	})

	t.Run("benchmark spans dates dropped from the basket", func(t *testing.T) {
		handler, priceRepository := newTestBacktestService(t)
		gapped := []domain.AssetPrice{}
		for _, p := range longPrices(basket) {
			// MSFT has no print on the fourth session
			if p.Symbol == "MSFT" && p.Date.Equal(priceDates(4)[3]) {
				continue
			}
			gapped = append(gapped, p)
		}
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"AAPL", "MSFT", "NVDA"}, start, end).
			Return(gapped, nil)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"SPY"}, start, end).
			Return(longPrices(spy), nil)

		result, err := handler.Backtest(context.Background(), domain.BacktestRequest{
			Symbols:  []string{"AAPL", "MSFT", "NVDA"},
			Start:    start,
			End:      end,
			Strategy: domain.StrategyConfig{Kind: domain.StrategyKind_Momentum, Window: 3, TopN: 1},
		})
		require.NoError(t, err)

		d := priceDates(8)
		require.Equal(t, d[4:], result.Benchmark.Returns.Dates())
		// first scored date is d[4], whose previous kept session is d[2]
		require.InDelta(t, 404.0/399.0-1, result.Benchmark.Returns[0].Value, 1e-9)
		last, _ := result.Benchmark.Cumulative.Last()
		require.InDelta(t, 408.0/399.0, last.Value, 1e-9)
	})

	t.Run("no benchmark", func(t *testing.T) {
		handler, priceRepository := newTestBacktestService(t)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"AAPL", "MSFT", "NVDA"}, start, end).
			Return(longPrices(basket), nil)

		result, err := handler.Backtest(context.Background(), domain.BacktestRequest{
			Symbols:     []string{"AAPL", "MSFT", "NVDA"},
			Start:       start,
			End:         end,
			Strategy:    domain.StrategyConfig{Kind: domain.StrategyKind_LowVolatility, Window: 3},
			NoBenchmark: true,
		})
		require.NoError(t, err)
		require.Nil(t, result.Benchmark)
		require.False(t, result.Outperformed())
		require.Equal(t, 3, result.Request.Strategy.TopN)
	})

	t.Run("invalid request never loads prices", func(t *testing.T) {
		handler, _ := newTestBacktestService(t)
		_, err := handler.Backtest(context.Background(), domain.BacktestRequest{
			Symbols:  []string{"AAPL"},
			Start:    start,
			End:      end,
			Strategy: domain.StrategyConfig{Kind: domain.StrategyKind_Momentum, TopN: 2},
		})
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})

	t.Run("empty price source", func(t *testing.T) {
		handler, priceRepository := newTestBacktestService(t)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"AAPL"}, start, end).
			Return(nil, nil)

		_, err := handler.Backtest(context.Background(), domain.BacktestRequest{
			Symbols:  []string{"AAPL"},
			Start:    start,
			End:      end,
			Strategy: domain.StrategyConfig{Kind: domain.StrategyKind_Momentum},
		})
		require.ErrorAs(t, err, &domain.NoDataError{})
	})

	t.Run("benchmark failure fails the run", func(t *testing.T) {
		handler, priceRepository := newTestBacktestService(t)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"AAPL", "MSFT", "NVDA"}, start, end).
			Return(longPrices(basket), nil)
		priceRepository.EXPECT().
			List(gomock.Any(), []string{"QQQ"}, start, end).
			Return(nil, nil)

		result, err := handler.Backtest(context.Background(), domain.BacktestRequest{
			Symbols:   []string{"AAPL", "MSFT", "NVDA"},
			Start:     start,
			End:       end,
			Strategy:  domain.StrategyConfig{Kind: domain.StrategyKind_Momentum, Window: 2},
			Benchmark: "qqq",
		})
		require.Nil(t, result)
		require.ErrorAs(t, err, &domain.NoDataError{})
	})
}
