package repository

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"alphafactory/internal/util"
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"golang.org/x/time/rate"
)

// yahoo throttles bursts of chart requests, so symbols are fetched at
// a steady pace
const yahooRequestsPerSecond = 4

// NewYahooPriceRepository reads daily adjusted closes from the Yahoo
// chart API, one request per symbol
func NewYahooPriceRepository() PriceRepository {
	return yahooPriceRepositoryHandler{
		Limiter: rate.NewLimiter(rate.Limit(yahooRequestsPerSecond), yahooRequestsPerSecond),
	}
}

type yahooPriceRepositoryHandler struct {
	Limiter *rate.Limiter
}

func (h yahooPriceRepositoryHandler) List(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AssetPrice, error) {
	log := logger.FromContext(ctx)
	out := []domain.AssetPrice{}

	for _, symbol := range symbols {
		if err := h.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
		s := util.ToDate(start)
		// the chart api excludes the end timestamp
		e := util.ToDate(end).AddDate(0, 0, 1)
		params := &chart.Params{
			Start:    datetime.New(&s),
			End:      datetime.New(&e),
			Symbol:   symbol,
			Interval: datetime.OneDay,
		}
		iter := chart.Get(params)

		count := 0
		for iter.Next() {
			bar := iter.Bar()
			date := util.ToDate(time.Unix(int64(bar.Timestamp), 0).UTC())
			if !util.InDateRange(date, start, end) {
				continue
			}
			out = append(out, domain.AssetPrice{
				Symbol: symbol,
				Price:  bar.AdjClose,
				Date:   date,
			})
			count++
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
		}
		log.Debugw("fetched yahoo prices", "symbol", symbol, "rows", count)
	}

	return out, nil
}
