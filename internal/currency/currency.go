// Package currency converts and aggregates monetary amounts between the
// gourde and the US dollar using a single scalar rate.
package currency

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Code identifies one of the two supported currencies.
type Code string

const (
	// HTG is the local currency (Haitian gourde).
	HTG Code = "HTG"
	// USD is the foreign currency.
	USD Code = "USD"
)

// Valid reports whether the code is one of the supported currencies.
func (c Code) Valid() bool {
	return c == HTG || c == USD
}

// ErrInvalidRate indicates a non-positive exchange rate.
var ErrInvalidRate = errors.New("currency: rate must be positive")

// Convert translates an amount between currencies. The rate is always quoted
// as gourdes per dollar and must be positive; identity conversions return the
// amount untouched. A non-positive rate panics with ErrInvalidRate in both
// directions, matching what decimal division does on the gourde-to-dollar
// path.
func Convert(amount decimal.Decimal, from, to Code, rate decimal.Decimal) decimal.Decimal {
	if from == to {
		return amount
	}
	if rate.Sign() <= 0 {
		panic(ErrInvalidRate)
	}
	if from == USD && to == HTG {
		return amount.Mul(rate)
	}
	return amount.Div(rate)
}

// LineAmount is one monetary component of an aggregation.
type LineAmount struct {
	Amount   decimal.Decimal
	Currency Code
}

// Totals carries the per-currency partition sums and the unified amount in
// the target currency.
type Totals struct {
	HTG     decimal.Decimal `json:"htg_total"`
	USD     decimal.Decimal `json:"usd_total"`
	Unified decimal.Decimal `json:"unified"`
	Target  Code            `json:"target"`
}

// Unify partitions the lines by currency, sums each partition, converts the
// non-target partition once with the supplied rate and adds the two. One rate
// value covers the whole aggregation, so a report stays internally
// consistent, and summation order never changes the result. Lines carrying an
// unknown currency code count as gourdes.
func Unify(lines []LineAmount, rate decimal.Decimal, target Code) Totals {
	htg := decimal.Zero
	usd := decimal.Zero
	for _, line := range lines {
		if line.Currency == USD {
			usd = usd.Add(line.Amount)
			continue
		}
		htg = htg.Add(line.Amount)
	}

	totals := Totals{HTG: htg, USD: usd, Target: target}
	if target == USD {
		totals.Unified = usd.Add(Convert(htg, HTG, USD, rate))
		return totals
	}
	totals.Target = HTG
	totals.Unified = htg.Add(Convert(usd, USD, HTG, rate))
	return totals
}
