package domain

import (
	"time"
)

// Selection is the equal-weight basket held over one scored date,
// best score first
type Selection struct {
	Date    time.Time
	Symbols []string
	Scores  []float64
}

type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// ReturnSeries is one portfolio return per scored date, in date order
type ReturnSeries []SeriesPoint

func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

func (s ReturnSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// CumulativeSeries is growth of $1, aligned one-to-one with the
// ReturnSeries it was built from
type CumulativeSeries []SeriesPoint

func (s CumulativeSeries) Last() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[len(s)-1], true
}
