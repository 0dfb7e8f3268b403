package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConvertIdentity(t *testing.T) {
	amount := dec("125.50")
	require.True(t, amount.Equal(Convert(amount, HTG, HTG, dec("132"))))
	require.True(t, amount.Equal(Convert(amount, USD, USD, dec("132"))))
}

func TestConvertBothDirections(t *testing.T) {
	rate := dec("132")
	require.True(t, dec("1320").Equal(Convert(dec("10"), USD, HTG, rate)))
	require.True(t, dec("10").Equal(Convert(dec("1320"), HTG, USD, rate)))
}

func TestConvertRejectsNonPositiveRate(t *testing.T) {
	require.PanicsWithValue(t, ErrInvalidRate, func() {
		Convert(dec("10"), HTG, USD, decimal.Zero)
	})
	require.PanicsWithValue(t, ErrInvalidRate, func() {
		Convert(dec("10"), USD, HTG, dec("-1"))
	})
	// Identity conversions never touch the rate.
	require.True(t, dec("10").Equal(Convert(dec("10"), HTG, HTG, decimal.Zero)))
}

func TestUnifyMixedCurrencies(t *testing.T) {
	lines := []LineAmount{
		{Amount: dec("100"), Currency: HTG},
		{Amount: dec("10"), Currency: USD},
	}
	totals := Unify(lines, dec("132"), HTG)
	require.True(t, dec("100").Equal(totals.HTG))
	require.True(t, dec("10").Equal(totals.USD))
	require.True(t, dec("1420").Equal(totals.Unified))
	require.Equal(t, HTG, totals.Target)
}

func TestUnifyTargetUSD(t *testing.T) {
	lines := []LineAmount{
		{Amount: dec("264"), Currency: HTG},
		{Amount: dec("5"), Currency: USD},
	}
	totals := Unify(lines, dec("132"), USD)
	require.True(t, dec("7").Equal(totals.Unified))
}

func TestUnifySingleCurrencyIgnoresRate(t *testing.T) {
	lines := []LineAmount{
		{Amount: dec("40"), Currency: HTG},
		{Amount: dec("60.25"), Currency: HTG},
	}
	for _, rate := range []string{"1", "37.5", "132", "500"} {
		totals := Unify(lines, dec(rate), HTG)
		require.True(t, dec("100.25").Equal(totals.Unified), "rate %s", rate)
		require.True(t, totals.USD.IsZero())
	}
}

func TestUnifyOrderIndependent(t *testing.T) {
	a := []LineAmount{
		{Amount: dec("100"), Currency: HTG},
		{Amount: dec("10"), Currency: USD},
		{Amount: dec("3.33"), Currency: USD},
		{Amount: dec("250.10"), Currency: HTG},
	}
	b := []LineAmount{a[3], a[1], a[0], a[2]}
	rate := dec("131.72")
	require.True(t, Unify(a, rate, HTG).Unified.Equal(Unify(b, rate, HTG).Unified))
}

func TestFormatAmount(t *testing.T) {
	require.Contains(t, FormatAmount(dec("10"), USD), "$")
	require.Contains(t, FormatAmount(dec("1420"), HTG), "G")
}
