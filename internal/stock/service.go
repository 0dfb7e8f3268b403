package stock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/catalog"
	"github.com/Amos-12/stock-management-sub001/internal/currency"
	"github.com/Amos-12/stock-management-sub001/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the sole authorized mutator of raw stock. Every write goes
// through Apply, which couples the product-row update with the ledger append
// in one transaction.
type Service struct {
	repo             RepositoryPort
	audit            AuditPort
	idempotency      *shared.IdempotencyStore
	rejectOverRemove bool
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// RejectOverRemove turns over-removal into a validation failure instead
	// of clamping the result at zero.
	RejectOverRemove bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, rejectOverRemove: cfg.RejectOverRemove}
}

// Apply validates and applies one add/remove/set adjustment. The product's
// raw-stock field and the ledger entry commit atomically; concurrent writers
// on the same product are serialized by the compare-and-swap on the value
// read at step one, so exactly one of two racing calls succeeds and the
// other gets ConflictError.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (ApplyResult, error) {
	if !input.Type.Valid() {
		return ApplyResult{}, &ValidationError{Field: "type", Message: "must be add, remove or set"}
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return ApplyResult{}, &ValidationError{Field: "reason", Message: "reason is required"}
	}
	if _, err := uuid.Parse(input.ActorID); err != nil {
		return ApplyResult{}, &ValidationError{Field: "actor_id", Message: "must be a valid actor id"}
	}
	switch input.Type {
	case AdjustAdd, AdjustRemove:
		if input.Quantity.Sign() <= 0 {
			return ApplyResult{}, &ValidationError{Field: "quantity", Message: "must be positive"}
		}
	case AdjustSet:
		if input.Quantity.Sign() < 0 {
			return ApplyResult{}, &ValidationError{Field: "quantity", Message: "must not be negative"}
		}
	}

	product, err := s.repo.GetProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return ApplyResult{}, &NotFoundError{ProductID: input.ProductID}
		}
		return ApplyResult{}, err
	}

	kind := KindOf(product)
	current := RawStock(product)

	var next decimal.Decimal
	var movementType MovementType
	var recorded decimal.Decimal
	switch input.Type {
	case AdjustAdd:
		next = current.Add(input.Quantity)
		movementType = MovementRestock
		recorded = input.Quantity
	case AdjustRemove:
		next = current.Sub(input.Quantity)
		if next.Sign() < 0 {
			if s.rejectOverRemove {
				return ApplyResult{}, &ValidationError{Field: "quantity", Message: "exceeds available stock"}
			}
			next = decimal.Zero
		}
		// The recorded delta reflects the clamped amount, which may be
		// smaller in magnitude than requested.
		recorded = next.Sub(current)
		movementType = MovementAdjustmentOut
	case AdjustSet:
		next = input.Quantity
		movementType = MovementAdjustmentSet
		recorded = input.Quantity
	}

	insertedKey := false
	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "stock"); err != nil {
			return ApplyResult{}, err
		}
		insertedKey = true
	}

	movement := Movement{
		ID:        uuid.NewString(),
		ProductID: input.ProductID,
		Type:      movementType,
		Quantity:  recorded,
		Previous:  current,
		New:       next,
		Reason:    reason,
		ActorID:   input.ActorID,
		CreatedAt: time.Now().UTC(),
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		latest, ok, err := tx.LatestMovement(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if ok && !latest.New.Equal(current) {
			return &ConflictError{ProductID: input.ProductID}
		}
		if err := tx.UpdateRawStock(ctx, input.ProductID, kind, current, next); err != nil {
			if errors.Is(err, ErrStaleStock) {
				return &ConflictError{ProductID: input.ProductID}
			}
			return err
		}
		return tx.InsertMovement(ctx, movement)
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return ApplyResult{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "stock:" + string(movementType),
			Entity:   "stock_movement",
			EntityID: movement.ID,
			Meta: map[string]any{
				"product_id": input.ProductID,
				"quantity":   recorded.String(),
				"previous":   current.String(),
				"new":        next.String(),
				"reason":     reason,
			},
		})
	}

	return ApplyResult{Previous: current, New: next}, nil
}

// History lists ledger entries for a product within a time range.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]Movement, error) {
	if filter.ProductID == 0 {
		return nil, &ValidationError{Field: "product_id", Message: "product is required"}
	}
	return s.repo.History(ctx, filter)
}

// Overview is the read model served to list and detail views.
type Overview struct {
	ProductID      int64         `json:"product_id"`
	Name           string        `json:"name"`
	Display        Display       `json:"display"`
	Availability   Availability  `json:"availability"`
	Tonnage        *TonnageView  `json:"tonnage,omitempty"`
	Currency       currency.Code `json:"currency"`
	PriceFormatted string        `json:"price_formatted"`
}

// GetOverview resolves display stock, tonnage sub-view and availability for
// one product.
func (s *Service) GetOverview(ctx context.Context, productID int64) (Overview, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return Overview{}, &NotFoundError{ProductID: productID}
		}
		return Overview{}, err
	}
	return buildOverview(product), nil
}

// ListLowStock returns active products classified rupture or alert.
func (s *Service) ListLowStock(ctx context.Context) ([]Overview, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	low := []Overview{}
	for _, p := range products {
		o := buildOverview(p)
		if o.Availability == AvailabilityRupture || o.Availability == AvailabilityAlert {
			low = append(low, o)
		}
	}
	return low, nil
}

func buildOverview(p catalog.Product) Overview {
	display := DisplayStock(p)
	o := Overview{
		ProductID:      p.ID,
		Name:           p.Name,
		Display:        display,
		Availability:   Classify(display.Value, p.AlertThreshold),
		Currency:       p.Currency,
		PriceFormatted: currency.FormatAmount(p.Price, p.Currency),
	}
	if KindOf(p) == KindBar {
		if view, ok := Tonnage(p.StockBars, p.BarsPerTonne); ok {
			o.Tonnage = &view
		}
	}
	return o
}
