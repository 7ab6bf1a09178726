package calculator

import (
	"alphafactory/internal/domain"
	"fmt"
	"math"
	"sort"
	"time"
)

// SelectTopN picks the n best scoring symbols on date, highest first.
// Equal scores keep the panel's symbol order. Symbols without a score
// (NaN) are never selected.
func SelectTopN(scores domain.ScorePanel, date time.Time, n int) (domain.Selection, error) {
	if err := validateTopN(n); err != nil {
		return domain.Selection{}, err
	}
	i, ok := scores.DateIndex()[domain.DateKey(date)]
	if !ok {
		return domain.Selection{}, domain.InsufficientDataError{
			Required: 1,
			Got:      0,
			Reason:   fmt.Sprintf("no scores on %s", domain.DateKey(date)),
		}
	}
	return selectRow(scores, i, n)
}

func validateTopN(n int) error {
	if n < 1 {
		return domain.ConfigurationError{
			Field:  "topN",
			Reason: fmt.Sprintf("must be positive, got %d", n),
		}
	}
	return nil
}

// selectRow ranks row i of the panel
func selectRow(scores domain.ScorePanel, i, n int) (domain.Selection, error) {
	date := scores.Dates[i]
	row := scores.Values[i]

	candidates := []int{}
	for j, score := range row {
		if !math.IsNaN(score) {
			candidates = append(candidates, j)
		}
	}
	if n > len(candidates) {
		return domain.Selection{}, domain.ConfigurationError{
			Field:  "topN",
			Reason: fmt.Sprintf("top %d exceeds the %d symbol(s) with a score on %s", n, len(candidates), domain.DateKey(date)),
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return row[candidates[a]] > row[candidates[b]]
	})

	out := domain.Selection{
		Date:    date,
		Symbols: make([]string, n),
		Scores:  make([]float64, n),
	}
	for k, j := range candidates[:n] {
		out.Symbols[k] = scores.Symbols[j]
		out.Scores[k] = row[j]
	}
	return out, nil
}

// SelectAll runs SelectTopN on every scored date, in date order
func SelectAll(scores domain.ScorePanel, n int) ([]domain.Selection, error) {
	if err := validateTopN(n); err != nil {
		return nil, err
	}
	out := make([]domain.Selection, 0, scores.NumDates())
	for i := range scores.Dates {
		selection, err := selectRow(scores, i, n)
		if err != nil {
			return nil, err
		}
		out = append(out, selection)
	}
	return out, nil
}
