package stock

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/catalog"
)

// StockKind selects the raw-stock encoding of a product.
type StockKind int

const (
	// KindSimple counts plain units in Product.Quantity.
	KindSimple StockKind = iota
	// KindBoxed counts boxes; display stock is the covered surface.
	KindBoxed
	// KindBar counts bars; tonnage is a presentation-only sub-view.
	KindBar
)

// Display units for the converted encodings.
const (
	UnitSquareMetre = "m2"
	UnitBar         = "barre"
)

// KindOf maps the product's category tag to its stock encoding.
func KindOf(p catalog.Product) StockKind {
	switch p.Category {
	case catalog.CategoryCeramic:
		return KindBoxed
	case catalog.CategoryIron:
		return KindBar
	default:
		return KindSimple
	}
}

// RawStock returns the authoritative raw count for the product's encoding.
func RawStock(p catalog.Product) decimal.Decimal {
	switch KindOf(p) {
	case KindBoxed:
		return p.StockBoxes
	case KindBar:
		return p.StockBars
	default:
		return p.Quantity
	}
}

// Display is the human-facing converted stock. Raw keeps the persisted count
// the value was derived from; display stock is never stored independently.
type Display struct {
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit"`
	Raw   decimal.Decimal `json:"raw"`
}

// DisplayStock converts raw persisted stock into display stock. Area values
// round to 2 decimal places, half-up, so float drift never compounds across
// many boxes. Products whose category fields are unset fall back to the
// simple encoding.
func DisplayStock(p catalog.Product) Display {
	switch KindOf(p) {
	case KindBoxed:
		if p.StockBoxes.Sign() > 0 && p.AreaPerBox.Sign() > 0 {
			return Display{
				Value: p.StockBoxes.Mul(p.AreaPerBox).Round(2),
				Unit:  UnitSquareMetre,
				Raw:   p.StockBoxes,
			}
		}
	case KindBar:
		if p.StockBars.Sign() > 0 {
			return Display{Value: p.StockBars, Unit: UnitBar, Raw: p.StockBars}
		}
	}
	return Display{Value: p.Quantity, Unit: p.Unit, Raw: p.Quantity}
}

// TonnageView is the presentation-only tonnage of a bar product. The bar
// count stays authoritative.
type TonnageView struct {
	Tonnes decimal.Decimal `json:"tonnes"`
	Label  string          `json:"label"`
}

// Tonnage derives the tonnage view from a bar count. Returns false when the
// bars-per-tonne ratio is unset.
func Tonnage(bars, barsPerTonne decimal.Decimal) (TonnageView, bool) {
	if barsPerTonne.Sign() <= 0 {
		return TonnageView{}, false
	}
	tonnes := bars.Div(barsPerTonne)
	return TonnageView{Tonnes: tonnes, Label: tonnageLabel(tonnes)}, true
}

var quarterFractions = []struct {
	value float64
	text  string
}{
	{0, ""},
	{0.25, "1/4"},
	{0.5, "1/2"},
	{0.75, "3/4"},
}

// tonnageLabel renders quarter fractions as "1 1/2 tonnes" when the
// fractional remainder lands within 0.01 of a quarter, otherwise as a
// 2-decimal figure.
func tonnageLabel(tonnes decimal.Decimal) string {
	f, _ := tonnes.Float64()
	whole := math.Floor(f)
	frac := f - whole
	for _, q := range quarterFractions {
		if math.Abs(frac-q.value) > 0.01 {
			continue
		}
		switch {
		case q.text == "":
			return fmt.Sprintf("%d %s", int64(whole), tonneWord(f))
		case whole == 0:
			return fmt.Sprintf("%s %s", q.text, "tonne")
		default:
			return fmt.Sprintf("%d %s %s", int64(whole), q.text, tonneWord(f))
		}
	}
	return fmt.Sprintf("%.2f %s", f, tonneWord(f))
}

func tonneWord(v float64) string {
	if v > 1 {
		return "tonnes"
	}
	return "tonne"
}
