package stock

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/shared"
)

// SystemActorID marks ledger entries written by the reconciler rather than a
// user.
const SystemActorID = "00000000-0000-0000-0000-000000000000"

// ReconcileReason is the reason recorded on compensating movements.
const ReconcileReason = "reconciliation"

// Reconciler detects divergence between the materialized raw-stock field and
// the ledger-derived value, the signature of a write that failed between the
// product update and the ledger append. Repair appends a compensating
// movement bridging the ledger back to the materialized value; ledger rows
// are never rewritten.
type Reconciler struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewReconciler builds Reconciler.
func NewReconciler(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Reconciler {
	return &Reconciler{repo: repo, audit: audit, logger: logger}
}

// ReconcileResult reports the outcome for one product.
type ReconcileResult struct {
	ProductID int64
	Drift     decimal.Decimal
	Repaired  bool
}

// CheckProduct compares the materialized raw stock against the ledger and
// repairs any drift inside one transaction. A product with an empty ledger
// has nothing to compare.
func (r *Reconciler) CheckProduct(ctx context.Context, productID int64) (ReconcileResult, error) {
	result := ReconcileResult{ProductID: productID}
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		latest, ok, err := tx.LatestMovement(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		materialized := RawStock(product)
		if latest.New.Equal(materialized) {
			return nil
		}

		drift := materialized.Sub(latest.New)
		result.Drift = drift
		movementType := MovementAdjustmentIn
		if drift.Sign() < 0 {
			movementType = MovementAdjustmentOut
		}
		compensating := Movement{
			ID:        uuid.NewString(),
			ProductID: productID,
			Type:      movementType,
			Quantity:  drift,
			Previous:  latest.New,
			New:       materialized,
			Reason:    ReconcileReason,
			ActorID:   SystemActorID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.InsertMovement(ctx, compensating); err != nil {
			return err
		}
		result.Repaired = true

		// Internal detail: logged, never surfaced to callers verbatim.
		if r.logger != nil {
			partial := &PartialWriteError{ProductID: productID, Materialized: materialized, Ledger: latest.New}
			r.logger.Warn("ledger drift repaired",
				slog.Int64("product_id", productID),
				slog.String("drift", drift.String()),
				slog.Any("error", partial))
		}
		return nil
	})
	if err != nil {
		return ReconcileResult{ProductID: productID}, err
	}

	if result.Repaired && r.audit != nil {
		_ = r.audit.Record(ctx, shared.AuditLog{
			ActorID:  SystemActorID,
			Action:   "stock:reconcile",
			Entity:   "product",
			EntityID: strconv.FormatInt(productID, 10),
			Meta:     map[string]any{"drift": result.Drift.String()},
		})
	}
	return result, nil
}

// Sweep checks every active product and returns the repaired results.
func (r *Reconciler) Sweep(ctx context.Context) ([]ReconcileResult, error) {
	products, err := r.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	repaired := []ReconcileResult{}
	for _, p := range products {
		result, err := r.CheckProduct(ctx, p.ID)
		if err != nil {
			return repaired, err
		}
		if result.Repaired {
			repaired = append(repaired, result)
		}
	}
	return repaired, nil
}
