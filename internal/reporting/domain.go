// Package reporting aggregates sale lines into bucketed revenue and profit
// series, unified into a single target currency.
package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/currency"
)

// Bucketing selects the time grain of a report series.
type Bucketing string

const (
	// BucketDaily groups lines by calendar day.
	BucketDaily Bucketing = "daily"
	// BucketWeekly groups lines by ISO week, Monday start.
	BucketWeekly Bucketing = "weekly"
)

// Valid reports whether the bucketing is known.
func (b Bucketing) Valid() bool {
	return b == BucketDaily || b == BucketWeekly
}

// SaleLine is one sold item as recorded by the sales collaborator. Amounts
// stay in the line's own currency until aggregation.
type SaleLine struct {
	SaleID    int64
	ProductID int64
	Quantity  decimal.Decimal
	Subtotal  decimal.Decimal
	Profit    decimal.Decimal
	Currency  currency.Code
	SoldAt    time.Time
}

// Query bounds one report request. The range is inclusive of From and
// exclusive of To.
type Query struct {
	From      time.Time
	To        time.Time
	Bucketing Bucketing
	Target    currency.Code
}

// Bucket is one point of a report series.
type Bucket struct {
	Key     string          `json:"key"`
	Start   time.Time       `json:"start"`
	Revenue currency.Totals `json:"revenue"`
	Profit  currency.Totals `json:"profit"`
	Sales   int             `json:"sales"`
}

// Report is a bucketed series plus range-wide totals. RateUsed is the single
// rate value every conversion in the report was computed with.
type Report struct {
	Bucketing Bucketing       `json:"bucketing"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Buckets   []Bucket        `json:"buckets"`
	Revenue   currency.Totals `json:"revenue"`
	Profit    currency.Totals `json:"profit"`
	Sales     int             `json:"sales"`
	RateUsed  decimal.Decimal `json:"rate_used"`
}

// Comparison pairs the requested series with the window of equal length
// immediately before it. Previous is padded or truncated to Current's length
// so the two series line up point for point.
type Comparison struct {
	Current  Report `json:"current"`
	Previous Report `json:"previous"`
}
