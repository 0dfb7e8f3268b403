package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Amos-12/stock-management-sub001/internal/currency"
	"github.com/Amos-12/stock-management-sub001/internal/reporting"
)

// WarmupJob precomputes the report windows the dashboard requests on load, so
// the first morning visit hits a warm cache.
type WarmupJob struct {
	reports *reporting.Service
	logger  *slog.Logger
}

// NewWarmupJob constructs WarmupJob.
func NewWarmupJob(reports *reporting.Service, logger *slog.Logger) *WarmupJob {
	return &WarmupJob{reports: reports, logger: logger}
}

// Handle processes one warmup task.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	days := payload.Days
	if days <= 0 {
		days = 30
	}

	now := time.Now().UTC()
	queries := []reporting.Query{
		{From: now.AddDate(0, 0, -7), To: now, Bucketing: reporting.BucketDaily, Target: currency.HTG},
		{From: now.AddDate(0, 0, -days), To: now, Bucketing: reporting.BucketDaily, Target: currency.HTG},
		{From: now.AddDate(0, 0, -days), To: now, Bucketing: reporting.BucketWeekly, Target: currency.HTG},
	}
	for _, q := range queries {
		if _, err := j.reports.SalesReport(ctx, q); err != nil {
			j.logger.Warn("report warmup skipped",
				slog.String("bucket", string(q.Bucketing)),
				slog.Any("error", err))
		}
	}
	j.logger.Info("report warmup finished", slog.Int("windows", len(queries)))
	return nil
}
