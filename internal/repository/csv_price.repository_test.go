package repository

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/util"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const pricesCsv = `date,symbol,price
2024-01-02,AAPL,100
2024-01-02,MSFT,50
2024-01-03,AAPL,110
2024-01-03,MSFT,50
2024-01-04,AAPL,121
2024-01-04,MSFT,55
2024-01-04,NVDA,480.5
`

func TestCsvPriceRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("filters symbols and dates", func(t *testing.T) {
		repo := NewCsvPriceRepositoryFromString(pricesCsv)
		prices, err := repo.List(ctx, []string{"AAPL"}, util.NewDate(2024, 1, 3), util.NewDate(2024, 1, 4))
		require.NoError(t, err)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.AssetPrice{
					{Symbol: "AAPL", Price: decimal.NewFromInt(110), Date: util.NewDate(2024, 1, 3)},
					{Symbol: "AAPL", Price: decimal.NewFromInt(121), Date: util.NewDate(2024, 1, 4)},
				},
				prices,
			),
		)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		repo := NewCsvPriceRepositoryFromString(pricesCsv)
		prices, err := repo.List(ctx, []string{"TSLA"}, util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.NoError(t, err)
		require.Empty(t, prices)
	})

	t.Run("bad date", func(t *testing.T) {
		repo := NewCsvPriceRepositoryFromString("date,symbol,price\n01/02/2024,AAPL,100\n")
		_, err := repo.List(ctx, []string{"AAPL"}, util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.Error(t, err)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prices.csv")
		require.NoError(t, os.WriteFile(path, []byte(pricesCsv), 0o644))

		prices, err := NewCsvPriceRepository(path).List(ctx, []string{"MSFT", "NVDA"}, util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.NoError(t, err)
		require.Len(t, prices, 4)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewCsvPriceRepository(filepath.Join(t.TempDir(), "nope.csv")).List(ctx, []string{"AAPL"}, util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.Error(t, err)
	})
}
