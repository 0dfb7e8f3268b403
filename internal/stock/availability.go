package stock

import "github.com/shopspring/decimal"

// Availability classifies a product's display stock against its alert
// threshold.
type Availability string

const (
	// AvailabilityRupture means no sellable stock.
	AvailabilityRupture Availability = "rupture"
	// AvailabilityAlert means stock at or under the alert threshold.
	AvailabilityAlert Availability = "alert"
	// AvailabilityNormal means stock above the threshold.
	AvailabilityNormal Availability = "normal"
	// AvailabilityHigh means stock strictly above three times the threshold.
	AvailabilityHigh Availability = "high"
)

var three = decimal.NewFromInt(3)

// Classify buckets a display-stock value. Total and mutually exclusive: the
// triple-threshold boundary belongs to normal, not high.
func Classify(displayValue, alertThreshold decimal.Decimal) Availability {
	if displayValue.Sign() <= 0 {
		return AvailabilityRupture
	}
	if displayValue.Cmp(alertThreshold) <= 0 {
		return AvailabilityAlert
	}
	if displayValue.Cmp(alertThreshold.Mul(three)) > 0 {
		return AvailabilityHigh
	}
	return AvailabilityNormal
}
