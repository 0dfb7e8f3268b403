package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	htgPrinter = message.NewPrinter(language.French)
	usdPrinter = message.NewPrinter(language.English)
)

// FormatAmount renders a human-facing amount with the conventional symbol,
// "1 250,50 G" for gourdes and "$10.00" for dollars. Presentation only; the
// decimal value stays authoritative.
func FormatAmount(amount decimal.Decimal, code Code) string {
	f, _ := amount.Float64()
	if code == USD {
		return usdPrinter.Sprintf("$%v", number.Decimal(f, number.Scale(2)))
	}
	return htgPrinter.Sprintf("%v G", number.Decimal(f, number.Scale(2)))
}
