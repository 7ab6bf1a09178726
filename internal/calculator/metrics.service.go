package calculator

import (
	"alphafactory/internal/domain"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

const tradingDaysPerYear = 252

// Summarize derives the annualized sharpe ratio and total return.
// Sharpe uses the sample standard deviation of the period returns and
// assumes daily periods.
func Summarize(portfolioReturns domain.ReturnSeries, cumulative domain.CumulativeSeries) (domain.PerformanceSummary, error) {
	if len(portfolioReturns) < 2 {
		return domain.PerformanceSummary{}, domain.DegenerateSeriesError{
			Points: len(portfolioReturns),
			Reason: "sharpe ratio needs at least two returns",
		}
	}
	if len(cumulative) != len(portfolioReturns) {
		return domain.PerformanceSummary{}, fmt.Errorf("cumulative series has %d points, expected %d", len(cumulative), len(portfolioReturns))
	}

	values := portfolioReturns.Values()
	mean, err := stats.Mean(values)
	if err != nil {
		return domain.PerformanceSummary{}, err
	}
	stdev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return domain.PerformanceSummary{}, err
	}
	// an exactly flat series can still leave rounding noise in stdev
	if stdev == 0 || math.IsNaN(stdev) || allEqual(values) {
		return domain.PerformanceSummary{}, domain.DegenerateSeriesError{
			Points: len(values),
			Reason: "returns have zero variance",
		}
	}

	last, _ := cumulative.Last()
	annualizer := math.Sqrt(tradingDaysPerYear)

	return domain.PerformanceSummary{
		AnnualizedSharpe:     mean / stdev * annualizer,
		TotalReturn:          last.Value - 1,
		AnnualizedVolatility: stdev * annualizer,
		Periods:              len(values),
		Start:                portfolioReturns[0].Date,
		End:                  last.Date,
	}, nil
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
