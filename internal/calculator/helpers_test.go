package calculator

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/util"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func dates(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = util.NewDate(2024, 1, 2+i)
	}
	return out
}

// pricePanel builds a panel from per-symbol price columns
func pricePanel(t *testing.T, symbols []string, columns ...[]float64) domain.PricePanel {
	t.Helper()
	n := len(columns[0])
	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(columns))
		for j, column := range columns {
			row[j] = column[i]
		}
		values[i] = row
	}
	panel, err := domain.NewPricePanel(dates(n), symbols, values)
	require.NoError(t, err)
	return panel
}

// the AAPL/MSFT walkthrough used across the pipeline tests
func scenarioPanel(t *testing.T) domain.PricePanel {
	return pricePanel(t,
		[]string{"AAPL", "MSFT"},
		[]float64{100, 110, 121},
		[]float64{50, 50, 55},
	)
}

func requireApprox(t *testing.T, expected, actual interface{}) {
	t.Helper()
	require.Equal(t, "", cmp.Diff(expected, actual, approx))
}
