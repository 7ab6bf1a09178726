package repository

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/util"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type csvPriceRow struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Price  float64 `csv:"price"`
}

// NewCsvPriceRepository serves prices from a long format csv file with
// date,symbol,price columns
func NewCsvPriceRepository(path string) PriceRepository {
	return csvPriceRepositoryHandler{
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
		name: path,
	}
}

// NewCsvPriceRepositoryFromString is mostly useful for tests and
// fixtures embedded in code
func NewCsvPriceRepositoryFromString(contents string) PriceRepository {
	return csvPriceRepositoryHandler{
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(contents)), nil
		},
		name: "inline csv",
	}
}

type csvPriceRepositoryHandler struct {
	open func() (io.ReadCloser, error)
	name string
}

func (h csvPriceRepositoryHandler) List(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AssetPrice, error) {
	f, err := h.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", h.name, err)
	}
	defer f.Close()

	rows := []csvPriceRow{}
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.name, err)
	}

	wanted := symbolSet(symbols)
	out := []domain.AssetPrice{}
	for _, row := range rows {
		if !wanted[row.Symbol] {
			continue
		}
		date, err := util.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q for %s in %s: %w", row.Date, row.Symbol, h.name, err)
		}
		if !util.InDateRange(date, start, end) {
			continue
		}
		out = append(out, domain.AssetPrice{
			Symbol: row.Symbol,
			Price:  decimal.NewFromFloat(row.Price),
			Date:   date,
		})
	}

	return out, nil
}
