package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPrice is a single adjusted close as returned by a price source
type AssetPrice struct {
	Symbol string
	Price  decimal.Decimal
	Date   time.Time
}
