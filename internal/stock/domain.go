// Package stock implements the stock core: the unit conversion model, the
// append-only movement ledger, the adjustment processor and the availability
// classifier.
package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType enumerates ledger event kinds.
type MovementType string

const (
	// MovementRestock records an inbound add.
	MovementRestock MovementType = "restock"
	// MovementAdjustmentIn records a positive manual correction.
	MovementAdjustmentIn MovementType = "adjustment_in"
	// MovementAdjustmentOut records a negative manual correction.
	MovementAdjustmentOut MovementType = "adjustment_out"
	// MovementAdjustmentSet records an absolute overwrite; Quantity holds
	// the target, not a delta.
	MovementAdjustmentSet MovementType = "adjustment_set"
	// MovementSale is written by the sale-completion collaborator.
	MovementSale MovementType = "sale"
	// MovementReturn records returned goods.
	MovementReturn MovementType = "return"
	// MovementLoss records breakage or theft write-offs.
	MovementLoss MovementType = "loss"
)

// Valid reports whether the movement type is known.
func (t MovementType) Valid() bool {
	switch t {
	case MovementRestock, MovementAdjustmentIn, MovementAdjustmentOut,
		MovementAdjustmentSet, MovementSale, MovementReturn, MovementLoss:
		return true
	}
	return false
}

// IsDelta reports whether Quantity carries a signed delta. For set-type
// movements Quantity is the absolute target and the delta is New-Previous.
func (t MovementType) IsDelta() bool {
	return t != MovementAdjustmentSet
}

// Movement is one immutable ledger entry. Rows are never updated or deleted;
// corrections are new compensating entries.
type Movement struct {
	ID        string          `json:"id"`
	ProductID int64           `json:"product_id"`
	Type      MovementType    `json:"movement_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Previous  decimal.Decimal `json:"previous_quantity"`
	New       decimal.Decimal `json:"new_quantity"`
	Reason    string          `json:"reason"`
	ActorID   string          `json:"actor_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdjustmentType enumerates the manual stock operations.
type AdjustmentType string

const (
	// AdjustAdd increases raw stock by a positive quantity.
	AdjustAdd AdjustmentType = "add"
	// AdjustRemove decreases raw stock, clamped at zero by default.
	AdjustRemove AdjustmentType = "remove"
	// AdjustSet overwrites raw stock with an absolute value.
	AdjustSet AdjustmentType = "set"
)

// Valid reports whether the adjustment type is known.
func (t AdjustmentType) Valid() bool {
	return t == AdjustAdd || t == AdjustRemove || t == AdjustSet
}

// ApplyInput describes one adjustment request.
type ApplyInput struct {
	ProductID      int64
	Type           AdjustmentType
	Quantity       decimal.Decimal
	Reason         string
	ActorID        string
	IdempotencyKey string
}

// ApplyResult reports the raw-stock transition of a successful adjustment.
type ApplyResult struct {
	Previous decimal.Decimal `json:"previous"`
	New      decimal.Decimal `json:"new"`
}

// HistoryFilter bounds a ledger query.
type HistoryFilter struct {
	ProductID int64
	From      time.Time
	To        time.Time
	Limit     int
}
