package calculator

import (
	"alphafactory/internal/domain"
	"fmt"
)

// ComputeReturns turns price levels into period-over-period returns.
// The result has one row fewer than the input: there is no return on
// the first date.
func ComputeReturns(panel domain.PricePanel) (domain.ReturnPanel, error) {
	if panel.NumDates() < 2 {
		return domain.ReturnPanel{}, domain.InsufficientDataError{
			Required: 2,
			Got:      panel.NumDates(),
			Reason:   "returns need at least two price dates",
		}
	}
	if err := panel.Validate(); err != nil {
		return domain.ReturnPanel{}, fmt.Errorf("invalid price panel: %w", err)
	}

	dates := panel.Dates[1:]
	values := make([][]float64, len(dates))
	for i := 1; i < panel.NumDates(); i++ {
		prev := panel.Values[i-1]
		curr := panel.Values[i]
		row := make([]float64, len(curr))
		for j := range curr {
			row[j] = curr[j]/prev[j] - 1
		}
		values[i-1] = row
	}

	return domain.ReturnPanel{Panel: domain.Panel{
		Dates:   dates,
		Symbols: panel.Symbols,
		Values:  values,
	}}, nil
}
