package domain

import (
	"fmt"
	"math"
	"time"
)

// DateKey is how panels and series are joined. Two timestamps on the
// same calendar day refer to the same trading date.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Panel is a dense date x symbol table. Dates are strictly ascending
// and Symbols keeps the order the caller supplied, which is also the
// tie-break order for selection.
type Panel struct {
	Dates   []time.Time
	Symbols []string
	// Values[i][j] is the value of Symbols[j] on Dates[i]
	Values [][]float64
}

func (p Panel) NumDates() int {
	return len(p.Dates)
}

func (p Panel) NumSymbols() int {
	return len(p.Symbols)
}

// DateIndex maps date keys to row positions
func (p Panel) DateIndex() map[string]int {
	out := make(map[string]int, len(p.Dates))
	for i, d := range p.Dates {
		out[DateKey(d)] = i
	}
	return out
}

// Row returns the values on the given date, or false if the panel has
// no row for it
func (p Panel) Row(date time.Time) ([]float64, bool) {
	key := DateKey(date)
	for i, d := range p.Dates {
		if DateKey(d) == key {
			return p.Values[i], true
		}
	}
	return nil, false
}

func (p Panel) SymbolIndex(symbol string) (int, bool) {
	for i, s := range p.Symbols {
		if s == symbol {
			return i, true
		}
	}
	return 0, false
}

// Column copies out the series for one symbol
func (p Panel) Column(symbol string) ([]float64, error) {
	j, ok := p.SymbolIndex(symbol)
	if !ok {
		return nil, fmt.Errorf("symbol %s not in panel", symbol)
	}
	out := make([]float64, len(p.Dates))
	for i := range p.Dates {
		out[i] = p.Values[i][j]
	}
	return out, nil
}

// Get looks up a single cell by date key and symbol
func (p Panel) Get(date time.Time, symbol string) (float64, bool) {
	row, ok := p.Row(date)
	if !ok {
		return 0, false
	}
	j, ok := p.SymbolIndex(symbol)
	if !ok {
		return 0, false
	}
	return row[j], true
}

func (p Panel) validateShape() error {
	if len(p.Values) != len(p.Dates) {
		return fmt.Errorf("panel has %d dates but %d rows", len(p.Dates), len(p.Values))
	}
	seen := map[string]bool{}
	for _, s := range p.Symbols {
		if seen[s] {
			return fmt.Errorf("duplicate symbol %s in panel", s)
		}
		seen[s] = true
	}
	for i, row := range p.Values {
		if len(row) != len(p.Symbols) {
			return fmt.Errorf("row %s has %d values, expected %d", DateKey(p.Dates[i]), len(row), len(p.Symbols))
		}
		if i > 0 && DateKey(p.Dates[i]) <= DateKey(p.Dates[i-1]) {
			return fmt.Errorf("panel dates must be strictly ascending: %s follows %s", DateKey(p.Dates[i]), DateKey(p.Dates[i-1]))
		}
	}
	return nil
}

// PricePanel holds adjusted closes, all positive
type PricePanel struct {
	Panel
}

// NewPricePanel validates shape and prices before handing back a panel
func NewPricePanel(dates []time.Time, symbols []string, prices [][]float64) (PricePanel, error) {
	p := PricePanel{Panel{
		Dates:   dates,
		Symbols: symbols,
		Values:  prices,
	}}
	if err := p.Validate(); err != nil {
		return PricePanel{}, err
	}
	return p, nil
}

func (p PricePanel) Validate() error {
	if err := p.validateShape(); err != nil {
		return err
	}
	for i, row := range p.Values {
		for j, price := range row {
			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
				return fmt.Errorf("invalid price %v for %s on %s", price, p.Symbols[j], DateKey(p.Dates[i]))
			}
		}
	}
	return nil
}

// RestrictTo keeps only the rows on the given dates, in panel order.
// Every date must be present.
func (p PricePanel) RestrictTo(dates []time.Time) (PricePanel, error) {
	index := p.DateIndex()
	keep := map[int]bool{}
	for _, d := range dates {
		i, ok := index[DateKey(d)]
		if !ok {
			return PricePanel{}, InsufficientDataError{
				Required: len(dates),
				Got:      len(keep),
				Reason:   fmt.Sprintf("no prices on %s", DateKey(d)),
			}
		}
		keep[i] = true
	}

	out := PricePanel{Panel{Symbols: p.Symbols}}
	for i := range p.Dates {
		if keep[i] {
			out.Dates = append(out.Dates, p.Dates[i])
			out.Values = append(out.Values, p.Values[i])
		}
	}
	return out, nil
}

// ReturnPanel holds fractional period returns. It has no row for the
// first date of the price panel it came from.
type ReturnPanel struct {
	Panel
}

// ScorePanel holds rolling scores, higher is better. NaN marks a symbol
// without a defined score on that date.
type ScorePanel struct {
	Panel
}
