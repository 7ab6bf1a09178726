package repository

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/util"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
)

// barRecord is the on-disk schema of a daily bar file
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"`
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// NewParquetPriceRepository reads adjusted daily bars from
// <dataDir>/<SYMBOL>.parquet, one file per symbol
func NewParquetPriceRepository(dataDir string) PriceRepository {
	return parquetPriceRepositoryHandler{DataDir: dataDir}
}

type parquetPriceRepositoryHandler struct {
	DataDir string
}

func (h parquetPriceRepositoryHandler) path(symbol string) string {
	return filepath.Join(h.DataDir, symbol+".parquet")
}

func (h parquetPriceRepositoryHandler) List(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AssetPrice, error) {
	out := []domain.AssetPrice{}
	for _, symbol := range symbols {
		records, err := parquet.ReadFile[barRecord](h.path(symbol))
		if errors.Is(err, fs.ErrNotExist) {
			// a missing file is missing data, not a failure
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bars for %s: %w", symbol, err)
		}
		for _, r := range records {
			date := util.ToDate(time.UnixMilli(r.Timestamp).UTC())
			if !util.InDateRange(date, start, end) {
				continue
			}
			out = append(out, domain.AssetPrice{
				Symbol: symbol,
				Price:  decimal.NewFromFloat(r.Close),
				Date:   date,
			})
		}
	}
	return out, nil
}

// WriteParquetBars writes a bar file in the layout the repository
// reads. Used to build fixtures and local caches.
func WriteParquetBars(dataDir string, symbol string, prices []domain.AssetPrice) error {
	records := make([]barRecord, len(prices))
	for i, p := range prices {
		price := p.Price.InexactFloat64()
		records[i] = barRecord{
			Symbol:    symbol,
			Timestamp: p.Date.UnixMilli(),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
		}
	}
	path := filepath.Join(dataDir, symbol+".parquet")
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
