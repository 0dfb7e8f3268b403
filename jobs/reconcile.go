package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Amos-12/stock-management-sub001/internal/stock"
)

// DriftObserver counts repaired drifts for metrics.
type DriftObserver interface {
	ObserveDrift()
}

// ReconcileJob runs the ledger reconciliation sweep.
type ReconcileJob struct {
	reconciler *stock.Reconciler
	metrics    DriftObserver
	logger     *slog.Logger
}

// NewReconcileJob constructs ReconcileJob.
func NewReconcileJob(reconciler *stock.Reconciler, metrics DriftObserver, logger *slog.Logger) *ReconcileJob {
	return &ReconcileJob{reconciler: reconciler, metrics: metrics, logger: logger}
}

// Handle processes one reconciliation task.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	if payload.ProductID > 0 {
		result, err := j.reconciler.CheckProduct(ctx, payload.ProductID)
		if err != nil {
			return err
		}
		if result.Repaired {
			j.observe(1)
		}
		return nil
	}

	repaired, err := j.reconciler.Sweep(ctx)
	if err != nil {
		return err
	}
	j.observe(len(repaired))
	j.logger.Info("reconciliation sweep finished", slog.Int("repaired", len(repaired)))
	return nil
}

func (j *ReconcileJob) observe(n int) {
	if j.metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		j.metrics.ObserveDrift()
	}
}
