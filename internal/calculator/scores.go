package calculator

import (
	"alphafactory/internal/domain"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// windowScorer reduces one symbol's trailing returns to a score
type windowScorer func(window []float64) (float64, error)

func momentumScore(window []float64) (float64, error) {
	return stats.Mean(window)
}

func lowVolatilityScore(window []float64) (float64, error) {
	stdev, err := stats.StandardDeviationSample(window)
	if err != nil {
		return 0, err
	}
	return -stdev, nil
}

// ComputeScores scores every symbol on every date with a full trailing
// window, ending at (and including) that date. The first window-1
// return dates are dropped.
func ComputeScores(returns domain.ReturnPanel, kind domain.StrategyKind, window int) (domain.ScorePanel, error) {
	var scorer windowScorer
	switch kind {
	case domain.StrategyKind_Momentum:
		scorer = momentumScore
	case domain.StrategyKind_LowVolatility:
		if window < 2 {
			return domain.ScorePanel{}, domain.ConfigurationError{
				Field:  "window",
				Reason: "low volatility needs a window of at least 2 for a sample standard deviation",
			}
		}
		scorer = lowVolatilityScore
	default:
		return domain.ScorePanel{}, domain.ConfigurationError{
			Field:  "strategy",
			Reason: fmt.Sprintf("cannot compute rolling scores for strategy kind %q", kind),
		}
	}
	return rollingScores(returns, window, scorer)
}

// ScoreStrategy dispatches on the full strategy config, including
// expression strategies
func ScoreStrategy(returns domain.ReturnPanel, cfg domain.StrategyConfig) (domain.ScorePanel, error) {
	if cfg.Kind == domain.StrategyKind_Expression {
		return ComputeExpressionScores(returns, cfg.Expression, cfg.Window)
	}
	return ComputeScores(returns, cfg.Kind, cfg.Window)
}

func rollingScores(returns domain.ReturnPanel, window int, scorer windowScorer) (domain.ScorePanel, error) {
	if window < 1 {
		return domain.ScorePanel{}, domain.ConfigurationError{
			Field:  "window",
			Reason: fmt.Sprintf("must be positive, got %d", window),
		}
	}
	n := returns.NumDates()
	if n < window {
		return domain.ScorePanel{}, domain.InsufficientDataError{
			Required: window,
			Got:      n,
			Reason:   "no date has a full rolling window of returns",
		}
	}

	columns := make([][]float64, returns.NumSymbols())
	for j, symbol := range returns.Symbols {
		column, err := returns.Column(symbol)
		if err != nil {
			return domain.ScorePanel{}, err
		}
		columns[j] = column
	}

	dates := returns.Dates[window-1:]
	values := make([][]float64, len(dates))
	for i := window - 1; i < n; i++ {
		row := make([]float64, len(columns))
		for j, column := range columns {
			score, err := scorer(column[i-window+1 : i+1])
			if err != nil {
				return domain.ScorePanel{}, fmt.Errorf("failed to score %s on %s: %w", returns.Symbols[j], domain.DateKey(returns.Dates[i]), err)
			}
			if math.IsInf(score, 0) {
				score = math.NaN()
			}
			row[j] = score
		}
		values[i-window+1] = row
	}

	return domain.ScorePanel{Panel: domain.Panel{
		Dates:   dates,
		Symbols: returns.Symbols,
		Values:  values,
	}}, nil
}
