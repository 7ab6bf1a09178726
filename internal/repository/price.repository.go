package repository

import (
	"alphafactory/internal/domain"
	"context"
	"time"
)

// PriceRepository is a source of daily adjusted closes. Both ends of
// the date range are inclusive. Returning no rows is not an error;
// callers decide what an empty response means.
type PriceRepository interface {
	List(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AssetPrice, error)
}

type PriceProvider string

const (
	PriceProvider_Yahoo    PriceProvider = "yahoo"
	PriceProvider_Alpaca   PriceProvider = "alpaca"
	PriceProvider_Csv      PriceProvider = "csv"
	PriceProvider_Parquet  PriceProvider = "parquet"
	PriceProvider_Postgres PriceProvider = "postgres"
)

func symbolSet(symbols []string) map[string]bool {
	out := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		out[s] = true
	}
	return out
}
