// Package catalog exposes the product records owned by the catalog
// collaborator. Everything here is read-only for the stock core except the
// raw-stock fields, which only the adjustment processor may write.
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/currency"
)

// Category tags a product with its stock encoding.
type Category string

const (
	// CategoryCeramic marks boxed goods sold by covered surface.
	CategoryCeramic Category = "ceramique"
	// CategoryIron marks bar goods quoted per tonne.
	CategoryIron Category = "fer"
)

// Product mirrors one catalog row. Exactly one raw-stock field set is
// authoritative, selected by Category: Quantity for simple goods,
// StockBoxes/AreaPerBox for boxed goods, StockBars/BarsPerTonne for bars.
type Product struct {
	ID             int64
	Name           string
	Category       Category
	Unit           string
	Currency       currency.Code
	Price          decimal.Decimal
	PurchasePrice  decimal.Decimal
	AlertThreshold decimal.Decimal
	IsActive       bool

	Quantity     decimal.Decimal
	StockBoxes   decimal.Decimal
	AreaPerBox   decimal.Decimal
	StockBars    decimal.Decimal
	BarsPerTonne decimal.Decimal
}
