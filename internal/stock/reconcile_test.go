package stock

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCheckProductNoLedger(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	rec := NewReconciler(repo, nil, slog.New(slog.DiscardHandler))

	result, err := rec.CheckProduct(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, result.Repaired)
	require.Empty(t, repo.movements[1])
}

func TestCheckProductInSync(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	svc := NewService(repo, nil, nil, ServiceConfig{})
	_, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: 1, Type: AdjustAdd, Quantity: dec(t, "5"), Reason: "r", ActorID: uuid.NewString(),
	})
	require.NoError(t, err)

	rec := NewReconciler(repo, nil, slog.New(slog.DiscardHandler))
	result, err := rec.CheckProduct(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, result.Repaired)
	require.Len(t, repo.movements[1], 1)
}

func TestCheckProductRepairsDrift(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	svc := NewService(repo, nil, nil, ServiceConfig{})
	_, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: 1, Type: AdjustAdd, Quantity: dec(t, "5"), Reason: "r", ActorID: uuid.NewString(),
	})
	require.NoError(t, err)

	// Simulate a product-row write whose ledger append was lost.
	p := repo.products[1]
	p.Quantity = dec(t, "18")
	repo.products[1] = p

	audit := &memoryAudit{}
	rec := NewReconciler(repo, audit, slog.New(slog.DiscardHandler))
	result, err := rec.CheckProduct(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, result.Repaired)
	require.True(t, result.Drift.Equal(dec(t, "3")))

	movements := repo.movements[1]
	require.Len(t, movements, 2, "repair appends, never rewrites")
	compensating := movements[1]
	require.Equal(t, MovementAdjustmentIn, compensating.Type)
	require.True(t, compensating.Previous.Equal(dec(t, "15")))
	require.True(t, compensating.New.Equal(dec(t, "18")))
	require.Equal(t, SystemActorID, compensating.ActorID)
	require.Equal(t, ReconcileReason, compensating.Reason)
	require.Len(t, audit.logs, 1)

	// A second pass finds nothing left to repair.
	result, err = rec.CheckProduct(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, result.Repaired)
}

func TestCheckProductNegativeDrift(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	svc := NewService(repo, nil, nil, ServiceConfig{})
	_, err := svc.Apply(context.Background(), ApplyInput{
		ProductID: 1, Type: AdjustAdd, Quantity: dec(t, "5"), Reason: "r", ActorID: uuid.NewString(),
	})
	require.NoError(t, err)

	p := repo.products[1]
	p.Quantity = dec(t, "12")
	repo.products[1] = p

	rec := NewReconciler(repo, nil, slog.New(slog.DiscardHandler))
	result, err := rec.CheckProduct(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, result.Repaired)
	require.True(t, result.Drift.Equal(dec(t, "-3")))
	require.Equal(t, MovementAdjustmentOut, repo.movements[1][1].Type)
}

func TestSweep(t *testing.T) {
	drifted := simpleProduct(t, "10")
	clean := simpleProduct(t, "7")
	clean.ID = 2
	repo := newMemoryRepo(drifted, clean)
	svc := NewService(repo, nil, nil, ServiceConfig{})
	for _, id := range []int64{1, 2} {
		_, err := svc.Apply(context.Background(), ApplyInput{
			ProductID: id, Type: AdjustAdd, Quantity: dec(t, "1"), Reason: "r", ActorID: uuid.NewString(),
		})
		require.NoError(t, err)
	}

	p := repo.products[1]
	p.Quantity = dec(t, "20")
	repo.products[1] = p

	rec := NewReconciler(repo, nil, slog.New(slog.DiscardHandler))
	repaired, err := rec.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, repaired, 1)
	require.Equal(t, int64(1), repaired[0].ProductID)
}
