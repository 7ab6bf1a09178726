package service

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"alphafactory/internal/repository"
	"alphafactory/internal/util"
	"context"
	"fmt"
	"sort"
	"time"
)

// PriceService turns price source rows into the dense panel the
// engine consumes
type PriceService interface {
	LoadPricePanel(ctx context.Context, symbols []string, start, end time.Time) (*domain.PricePanel, error)
}

type priceServiceHandler struct {
	PriceRepository repository.PriceRepository
}

func NewPriceService(priceRepository repository.PriceRepository) PriceService {
	return priceServiceHandler{
		PriceRepository: priceRepository,
	}
}

func (h priceServiceHandler) LoadPricePanel(ctx context.Context, symbols []string, start, end time.Time) (*domain.PricePanel, error) {
	log := logger.FromContext(ctx)

	endSpan := domain.StartSpan(ctx, "listing prices")
	prices, err := h.PriceRepository.List(ctx, symbols, start, end)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	if len(prices) == 0 {
		return nil, domain.NoDataError{
			Symbols: symbols,
			Reason:  fmt.Sprintf("price source returned nothing between %s and %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
		}
	}

	panel, dropped, err := BuildPricePanel(prices, symbols)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Warnw("dropped dates with missing prices", "dropped", dropped, "kept", panel.NumDates())
	}

	return panel, nil
}

// BuildPricePanel pivots long format prices into a panel with the
// given symbol order. Dates where any symbol lacks a price are dropped
// and counted. A symbol with no prices at all is a NoDataError.
func BuildPricePanel(prices []domain.AssetPrice, symbols []string) (*domain.PricePanel, int, error) {
	bySymbol := map[string]map[string]float64{}
	dates := map[string]time.Time{}
	for _, p := range prices {
		if _, ok := bySymbol[p.Symbol]; !ok {
			bySymbol[p.Symbol] = map[string]float64{}
		}
		key := domain.DateKey(p.Date)
		bySymbol[p.Symbol][key] = p.Price.InexactFloat64()
		if _, ok := dates[key]; !ok {
			dates[key] = util.ToDate(p.Date)
		}
	}

	missing := []string{}
	for _, symbol := range symbols {
		if len(bySymbol[symbol]) == 0 {
			missing = append(missing, symbol)
		}
	}
	if len(missing) > 0 {
		return nil, 0, domain.NoDataError{
			Symbols: missing,
			Reason:  "no prices returned for symbol(s)",
		}
	}

	keys := make([]string, 0, len(dates))
	for key := range dates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	panelDates := []time.Time{}
	values := [][]float64{}
	dropped := 0
	for _, key := range keys {
		row := make([]float64, len(symbols))
		complete := true
		for j, symbol := range symbols {
			price, ok := bySymbol[symbol][key]
			if !ok {
				complete = false
				break
			}
			row[j] = price
		}
		if !complete {
			dropped++
			continue
		}
		panelDates = append(panelDates, dates[key])
		values = append(values, row)
	}

	if len(panelDates) == 0 {
		return nil, dropped, domain.NoDataError{
			Symbols: symbols,
			Reason:  "no date has a price for every symbol",
		}
	}

	panel, err := domain.NewPricePanel(panelDates, append([]string{}, symbols...), values)
	if err != nil {
		return nil, dropped, fmt.Errorf("failed to build price panel: %w", err)
	}
	return &panel, dropped, nil
}
