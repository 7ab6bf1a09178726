package integration_tests

import (
	"alphafactory/internal/db/models/postgres/public/model"
	"alphafactory/internal/db/models/postgres/public/table"
	"alphafactory/internal/domain"
	"alphafactory/internal/repository"
	"alphafactory/internal/util"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const samplePricesFile = "sample_prices_2024.csv"

type samplePriceRow struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Price  float64 `csv:"price"`
}

func loadSamplePrices() ([]domain.AssetPrice, error) {
	f, err := os.Open(samplePricesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []samplePriceRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", samplePricesFile, err)
	}

	out := make([]domain.AssetPrice, 0, len(rows))
	for _, row := range rows {
		date, err := util.ParseDate(row.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AssetPrice{
			Symbol: row.Symbol,
			Price:  decimal.NewFromFloat(row.Price),
			Date:   date,
		})
	}
	return out, nil
}

// SeedParquet writes one bar file per symbol into dataDir
func SeedParquet(dataDir string) error {
	prices, err := loadSamplePrices()
	if err != nil {
		return err
	}
	bySymbol := map[string][]domain.AssetPrice{}
	for _, p := range prices {
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}
	for symbol, bars := range bySymbol {
		if err := repository.WriteParquetBars(dataDir, symbol, bars); err != nil {
			return err
		}
	}
	return nil
}

const createAdjustedPriceTable = `
CREATE TABLE IF NOT EXISTS adjusted_price (
	symbol TEXT NOT NULL,
	date DATE NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT now(),
	PRIMARY KEY (symbol, date)
)`

// SeedPostgres loads the sample prices into adjusted_price, replacing
// any rows already there
func SeedPostgres(tx *sql.Tx) error {
	prices, err := loadSamplePrices()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(createAdjustedPriceTable); err != nil {
		return fmt.Errorf("failed to create adjusted_price: %w", err)
	}

	models := make([]model.AdjustedPrice, len(prices))
	now := time.Now().UTC()
	for i, p := range prices {
		models[i] = model.AdjustedPrice{
			Symbol:    p.Symbol,
			Date:      p.Date,
			Price:     p.Price.InexactFloat64(),
			CreatedAt: now,
		}
	}

	query := table.AdjustedPrice.
		INSERT(table.AdjustedPrice.AllColumns).
		MODELS(models).
		ON_CONFLICT(table.AdjustedPrice.Symbol, table.AdjustedPrice.Date).
		DO_UPDATE(postgres.SET(
			table.AdjustedPrice.Price.SET(table.AdjustedPrice.EXCLUDED.Price),
		))
	if _, err := query.Exec(tx); err != nil {
		return fmt.Errorf("failed to insert prices: %w", err)
	}
	return nil
}
