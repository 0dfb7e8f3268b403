// Package jobs hosts the Asynq background workers: the nightly ledger
// reconciliation sweep and the report cache warmup.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerReconcile sweeps products for ledger drift.
	TaskLedgerReconcile = "stock:reconcile"
	// TaskReportWarmup precomputes the common report windows.
	TaskReportWarmup = "reports:warmup"
)

// ReconcilePayload scopes a reconciliation run. A zero ProductID sweeps every
// active product.
type ReconcilePayload struct {
	ProductID int64 `json:"product_id,omitempty"`
}

// NewReconcileTask constructs a reconciliation task.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, data), nil
}

// WarmupPayload scopes a warmup run.
type WarmupPayload struct {
	Days int `json:"days,omitempty"`
}

// NewWarmupTask constructs a warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
