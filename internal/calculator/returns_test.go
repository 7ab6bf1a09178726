package calculator

import (
	"alphafactory/internal/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeReturns(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		returns, err := ComputeReturns(scenarioPanel(t))
		require.NoError(t, err)

		require.Equal(t, 2, returns.NumDates())
		require.Equal(t, dates(3)[1:], returns.Dates)
		requireApprox(t, [][]float64{
			{0.10, 0},
			{0.10, 0.10},
		}, returns.Values)
	})

	t.Run("round trips to prices", func(t *testing.T) {
		panel := pricePanel(t,
			[]string{"A", "B", "C"},
			[]float64{10, 10.5, 9.75, 12, 11.1},
			[]float64{200, 180, 220, 221, 199.5},
			[]float64{3.3, 3.1, 3.9, 4.4, 4.0},
		)
		returns, err := ComputeReturns(panel)
		require.NoError(t, err)
		require.Equal(t, panel.NumDates()-1, returns.NumDates())

		for i := 1; i < panel.NumDates(); i++ {
			for j := range panel.Symbols {
				rebuilt := panel.Values[i-1][j] * (1 + returns.Values[i-1][j])
				require.InDelta(t, panel.Values[i][j], rebuilt, 1e-9)
			}
		}
	})

	t.Run("single date", func(t *testing.T) {
		_, err := ComputeReturns(pricePanel(t, []string{"A"}, []float64{10}))
		require.ErrorAs(t, err, &domain.InsufficientDataError{})
	})

	t.Run("non positive price", func(t *testing.T) {
		panel := domain.PricePanel{Panel: domain.Panel{
			Dates:   dates(2),
			Symbols: []string{"A"},
			Values:  [][]float64{{10}, {0}},
		}}
		_, err := ComputeReturns(panel)
		require.Error(t, err)

		var insufficient domain.InsufficientDataError
		require.False(t, errors.As(err, &insufficient))
	})

	t.Run("dates out of order", func(t *testing.T) {
		d := dates(2)
		panel := domain.PricePanel{Panel: domain.Panel{
			Dates:   []time.Time{d[1], d[0]},
			Symbols: []string{"A"},
			Values:  [][]float64{{10}, {11}},
		}}
		_, err := ComputeReturns(panel)
		require.Error(t, err)
	})
}
