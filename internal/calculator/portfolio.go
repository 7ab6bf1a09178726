package calculator

import (
	"alphafactory/internal/domain"
	"fmt"

	"github.com/montanaflynn/stats"
)

// AggregatePortfolio averages the selected symbols' returns on each
// selection date. Returns are joined to selections by date key, not
// by position.
func AggregatePortfolio(returns domain.ReturnPanel, selections []domain.Selection) (domain.ReturnSeries, error) {
	dateIndex := returns.DateIndex()
	out := make(domain.ReturnSeries, 0, len(selections))

	for i, selection := range selections {
		key := domain.DateKey(selection.Date)
		if i > 0 && key <= domain.DateKey(selections[i-1].Date) {
			return nil, fmt.Errorf("selections must be in strictly increasing date order: %s follows %s", key, domain.DateKey(selections[i-1].Date))
		}
		if len(selection.Symbols) == 0 {
			return nil, domain.ConfigurationError{
				Field:  "selection",
				Reason: fmt.Sprintf("empty selection on %s", key),
			}
		}
		row, ok := dateIndex[key]
		if !ok {
			return nil, domain.InsufficientDataError{
				Required: 1,
				Got:      0,
				Reason:   fmt.Sprintf("no returns on selection date %s", key),
			}
		}

		selected := make([]float64, len(selection.Symbols))
		for k, symbol := range selection.Symbols {
			j, ok := returns.SymbolIndex(symbol)
			if !ok {
				return nil, fmt.Errorf("selected symbol %s has no returns", symbol)
			}
			selected[k] = returns.Values[row][j]
		}
		mean, err := stats.Mean(selected)
		if err != nil {
			return nil, fmt.Errorf("failed to average returns on %s: %w", key, err)
		}

		out = append(out, domain.SeriesPoint{
			Date:  returns.Dates[row],
			Value: mean,
		})
	}

	return out, nil
}

// CumulativeGrowth is the growth of $1 invested at the start of the
// series: cumulative[i] = cumulative[i-1] * (1 + r[i]), seeded at 1
func CumulativeGrowth(portfolioReturns domain.ReturnSeries) domain.CumulativeSeries {
	out := make(domain.CumulativeSeries, len(portfolioReturns))
	growth := 1.0
	for i, p := range portfolioReturns {
		growth *= 1 + p.Value
		out[i] = domain.SeriesPoint{
			Date:  p.Date,
			Value: growth,
		}
	}
	return out
}
