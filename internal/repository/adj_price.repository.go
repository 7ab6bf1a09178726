package repository

import (
	"alphafactory/internal/db/models/postgres/public/model"
	. "alphafactory/internal/db/models/postgres/public/table"
	"alphafactory/internal/domain"
	"alphafactory/internal/util"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	. "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/shopspring/decimal"
)

// NewAdjustedPriceRepository reads from a pre-populated adjusted_price
// table. Results are cached per query since backtests tend to re-read
// the same benchmark window.
func NewAdjustedPriceRepository(db qrm.Queryable) PriceRepository {
	return &adjustedPriceRepositoryHandler{
		Db:        db,
		Cache:     map[string][]domain.AssetPrice{},
		ReadMutex: &sync.RWMutex{},
	}
}

type adjustedPriceRepositoryHandler struct {
	Db        qrm.Queryable
	Cache     map[string][]domain.AssetPrice
	ReadMutex *sync.RWMutex
}

func cacheKey(symbols []string, start, end time.Time) string {
	sorted := append([]string{}, symbols...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s/%s/%s", strings.Join(sorted, ","), start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (h *adjustedPriceRepositoryHandler) getFromCache(key string) ([]domain.AssetPrice, bool) {
	h.ReadMutex.RLock()
	defer h.ReadMutex.RUnlock()
	prices, ok := h.Cache[key]
	return prices, ok
}

func (h *adjustedPriceRepositoryHandler) addToCache(key string, prices []domain.AssetPrice) {
	h.ReadMutex.Lock()
	h.Cache[key] = prices
	h.ReadMutex.Unlock()
}

func (h *adjustedPriceRepositoryHandler) List(ctx context.Context, symbols []string, start, end time.Time) ([]domain.AssetPrice, error) {
	if len(symbols) == 0 {
		return []domain.AssetPrice{}, nil
	}
	key := cacheKey(symbols, start, end)
	if cached, ok := h.getFromCache(key); ok {
		return cached, nil
	}

	symbolFilter := []Expression{}
	for _, s := range symbols {
		symbolFilter = append(symbolFilter, String(s))
	}

	query := AdjustedPrice.
		SELECT(AdjustedPrice.AllColumns).
		WHERE(
			AND(
				AdjustedPrice.Symbol.IN(symbolFilter...),
				AdjustedPrice.Date.BETWEEN(DateT(start), DateT(end)),
			),
		).
		ORDER_BY(AdjustedPrice.Date.ASC(), AdjustedPrice.Symbol.ASC())

	result := []model.AdjustedPrice{}
	err := query.QueryContext(ctx, h.Db, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices for %v: %w", symbols, err)
	}

	out := make([]domain.AssetPrice, 0, len(result))
	for _, p := range result {
		out = append(out, domain.AssetPrice{
			Symbol: p.Symbol,
			Date:   util.ToDate(p.Date),
			Price:  decimal.NewFromFloat(p.Price),
		})
	}

	h.addToCache(key, out)
	return out, nil
}
