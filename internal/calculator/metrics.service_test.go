package calculator

import (
	"alphafactory/internal/domain"
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) domain.ReturnSeries {
	d := dates(len(values))
	out := make(domain.ReturnSeries, len(values))
	for i, v := range values {
		out[i] = domain.SeriesPoint{Date: d[i], Value: v}
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Run("sharpe and total return", func(t *testing.T) {
		returns := series(0.01, -0.02, 0.03, 0.015)
		cumulative := CumulativeGrowth(returns)

		summary, err := Summarize(returns, cumulative)
		require.NoError(t, err)

		mean, err := stats.Mean(returns.Values())
		require.NoError(t, err)
		stdev, err := stats.StandardDeviationSample(returns.Values())
		require.NoError(t, err)

		require.InDelta(t, mean/stdev*math.Sqrt(252), summary.AnnualizedSharpe, 1e-12)
		require.InDelta(t, stdev*math.Sqrt(252), summary.AnnualizedVolatility, 1e-12)
		require.InDelta(t, 1.01*0.98*1.03*1.015-1, summary.TotalReturn, 1e-12)
		require.Equal(t, 4, summary.Periods)
		require.Equal(t, returns[0].Date, summary.Start)
		require.Equal(t, returns[3].Date, summary.End)
	})

	t.Run("zero variance", func(t *testing.T) {
		returns := series(0.10, 0.10)
		_, err := Summarize(returns, CumulativeGrowth(returns))
		require.ErrorAs(t, err, &domain.DegenerateSeriesError{})
	})

	t.Run("flat zero returns", func(t *testing.T) {
		returns := series(0, 0, 0)
		_, err := Summarize(returns, CumulativeGrowth(returns))
		require.ErrorAs(t, err, &domain.DegenerateSeriesError{})
	})

	t.Run("single point", func(t *testing.T) {
		returns := series(0.05)
		_, err := Summarize(returns, CumulativeGrowth(returns))
		require.ErrorAs(t, err, &domain.DegenerateSeriesError{})
	})

	t.Run("misaligned cumulative", func(t *testing.T) {
		returns := series(0.01, 0.02, 0.03)
		_, err := Summarize(returns, CumulativeGrowth(returns[:2]))
		require.Error(t, err)
	})
}
