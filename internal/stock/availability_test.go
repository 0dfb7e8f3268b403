package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	threshold := decimal.NewFromInt(10)
	cases := []struct {
		value string
		want  Availability
	}{
		{"0", AvailabilityRupture},
		{"-1", AvailabilityRupture},
		{"0.01", AvailabilityAlert},
		{"10", AvailabilityAlert},
		{"10.01", AvailabilityNormal},
		{"30", AvailabilityNormal},
		{"30.01", AvailabilityHigh},
		{"500", AvailabilityHigh},
	}
	for _, tc := range cases {
		value, err := decimal.NewFromString(tc.value)
		require.NoError(t, err)
		require.Equal(t, tc.want, Classify(value, threshold), "value=%s", tc.value)
	}
}

func TestClassifyZeroThreshold(t *testing.T) {
	require.Equal(t, AvailabilityRupture, Classify(decimal.Zero, decimal.Zero))
	one := decimal.NewFromInt(1)
	require.Equal(t, AvailabilityHigh, Classify(one, decimal.Zero))
}
