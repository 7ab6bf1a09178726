package domain

import "fmt"

// NoDataError means the price source came back empty, or without
// any rows for a requested symbol
type NoDataError struct {
	Symbols []string
	Reason  string
}

func (e NoDataError) Error() string {
	return fmt.Sprintf("no price data for %v: %s", e.Symbols, e.Reason)
}

// InsufficientDataError means there are fewer dates or periods than
// the window or lookback requires
type InsufficientDataError struct {
	Required int
	Got      int
	Reason   string
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s (need %d, got %d)", e.Reason, e.Required, e.Got)
}

type ConfigurationError struct {
	Field  string
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DegenerateSeriesError is returned when the sharpe ratio is undefined,
// i.e. zero variance or fewer than two points
type DegenerateSeriesError struct {
	Points int
	Reason string
}

func (e DegenerateSeriesError) Error() string {
	return fmt.Sprintf("degenerate return series of %d point(s): %s", e.Points, e.Reason)
}
