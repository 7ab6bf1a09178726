package repository

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/util"
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// NewAlpacaPriceRepository reads split and dividend adjusted daily bars
// from the alpaca market data api
func NewAlpacaPriceRepository(apiKey, apiSecret string, endpoint string) PriceRepository {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if endpoint != "" {
		opts.BaseURL = endpoint
	}

	return &alpacaPriceRepositoryHandler{
		MdClient: marketdata.NewClient(opts),
	}
}

type alpacaPriceRepositoryHandler struct {
	MdClient *marketdata.Client
}

func (h alpacaPriceRepositoryHandler) List(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AssetPrice, error) {
	if len(symbols) == 0 {
		return []domain.AssetPrice{}, nil
	}

	multiBars, err := h.MdClient.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      util.ToDate(start),
		End:        util.ToDate(end).AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get alpaca bars for %v: %w", symbols, err)
	}

	out := []domain.AssetPrice{}
	for _, symbol := range symbols {
		for _, bar := range multiBars[symbol] {
			date := util.ToDate(bar.Timestamp.UTC())
			if !util.InDateRange(date, start, end) {
				continue
			}
			out = append(out, domain.AssetPrice{
				Symbol: symbol,
				Price:  decimal.NewFromFloat(bar.Close),
				Date:   date,
			})
		}
	}

	return out, nil
}
