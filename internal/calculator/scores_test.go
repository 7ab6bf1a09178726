package calculator

import (
	"alphafactory/internal/domain"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeScores(t *testing.T) {
	panel := pricePanel(t,
		[]string{"STEADY", "WILD"},
		[]float64{100, 101, 102, 103, 104, 105},
		[]float64{100, 120, 90, 130, 80, 140},
	)
	returns, err := ComputeReturns(panel)
	require.NoError(t, err)

	t.Run("drops window-1 leading dates", func(t *testing.T) {
		for window := 1; window <= returns.NumDates(); window++ {
			scores, err := ComputeScores(returns, domain.StrategyKind_Momentum, window)
			require.NoError(t, err)
			require.Equal(t, returns.NumDates()-(window-1), scores.NumDates())
			require.Equal(t, returns.Dates[window-1:], scores.Dates)
		}
	})

	t.Run("momentum is the trailing mean", func(t *testing.T) {
		scores, err := ComputeScores(returns, domain.StrategyKind_Momentum, 2)
		require.NoError(t, err)

		steady, err := returns.Column("STEADY")
		require.NoError(t, err)
		for i := range scores.Dates {
			expected := (steady[i] + steady[i+1]) / 2
			require.InDelta(t, expected, scores.Values[i][0], 1e-12)
		}
	})

	t.Run("low volatility prefers the steady series", func(t *testing.T) {
		scores, err := ComputeScores(returns, domain.StrategyKind_LowVolatility, 3)
		require.NoError(t, err)
		for _, row := range scores.Values {
			require.Less(t, row[0], 0.0+1e-12)
			require.Greater(t, row[0], row[1])
		}
	})

	t.Run("low volatility with window 1", func(t *testing.T) {
		_, err := ComputeScores(returns, domain.StrategyKind_LowVolatility, 1)
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})

	t.Run("window longer than returns", func(t *testing.T) {
		_, err := ComputeScores(returns, domain.StrategyKind_Momentum, returns.NumDates()+1)
		require.ErrorAs(t, err, &domain.InsufficientDataError{})
	})

	t.Run("non positive window", func(t *testing.T) {
		_, err := ComputeScores(returns, domain.StrategyKind_Momentum, 0)
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ComputeScores(returns, domain.StrategyKind("value"), 2)
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})
}

func TestComputeExpressionScores(t *testing.T) {
	returns, err := ComputeReturns(scenarioPanel(t))
	require.NoError(t, err)

	t.Run("mirrors momentum", func(t *testing.T) {
		scores, err := ComputeExpressionScores(returns, "mean * 2", 1)
		require.NoError(t, err)
		requireApprox(t, [][]float64{
			{0.20, 0},
			{0.20, 0.20},
		}, scores.Values)
	})

	t.Run("functions and growth", func(t *testing.T) {
		scores, err := ComputeExpressionScores(returns, "max(growth, 0) - abs(last)", 2)
		require.NoError(t, err)
		require.Equal(t, 1, scores.NumDates())
		// AAPL grew 21% over the window and last returned 10%
		require.InDelta(t, 0.11, scores.Values[0][0], 1e-9)
		require.InDelta(t, 0.0, scores.Values[0][1], 1e-9)
	})

	t.Run("stdev is undefined for a single return", func(t *testing.T) {
		scores, err := ComputeExpressionScores(returns, "mean / stdev", 1)
		require.NoError(t, err)
		for _, row := range scores.Values {
			for _, v := range row {
				require.True(t, math.IsNaN(v))
			}
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := ComputeExpressionScores(returns, "mean +", 1)
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})

	t.Run("unknown variable", func(t *testing.T) {
		_, err := ComputeExpressionScores(returns, "pe_ratio * 2", 1)
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})

	t.Run("non numeric result", func(t *testing.T) {
		_, err := ComputeExpressionScores(returns, "mean > 0", 1)
		require.ErrorAs(t, err, &domain.ConfigurationError{})
	})
}
