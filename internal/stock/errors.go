package stock

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError rejects a malformed adjustment before any write. Fully
// recoverable, zero state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stock: invalid %s: %s", e.Field, e.Message)
}

// ConflictError signals the optimistic guard tripped: the product's stock
// changed between the caller's read and the write. The caller must re-read
// and retry; the core never retries on its own.
type ConflictError struct {
	ProductID int64
}

func (e *ConflictError) Error() string {
	if e.ProductID == 0 {
		return "stock: stock changed since last read"
	}
	return fmt.Sprintf("stock: product %d changed since last read", e.ProductID)
}

// NotFoundError indicates the referenced product does not exist.
type NotFoundError struct {
	ProductID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("stock: product %d not found", e.ProductID)
}

// PartialWriteError reports that the materialized raw-stock field and the
// ledger-derived value diverged. The ledger is authoritative; repair appends
// a compensating movement, history is never rewritten.
type PartialWriteError struct {
	ProductID    int64
	Materialized decimal.Decimal
	Ledger       decimal.Decimal
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("stock: product %d materialized stock %s diverges from ledger %s",
		e.ProductID, e.Materialized.String(), e.Ledger.String())
}
