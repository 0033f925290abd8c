package jobs

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/grace-gov/grace-api/internal/jobs"
)

// AuditPruneJob deletes audit rows beyond the retention window.
type AuditPruneJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewAuditPruneJob constructs the prune job.
func NewAuditPruneJob(pool *pgxpool.Pool, logger *slog.Logger) *AuditPruneJob {
	return &AuditPruneJob{pool: pool, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// Handle processes TaskAuditPrune tasks.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("audit_prune")
	return tracker.End(j.handle(ctx, t))
}

func (j *AuditPruneJob) handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Retention <= 0 {
		return asynq.SkipRetry
	}
	cutoff := time.Now().UTC().Add(-payload.Retention)

	tag, err := j.pool.Exec(ctx,
		`DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("audit prune",
			slog.Time("cutoff", cutoff),
			slog.Int64("deleted", tag.RowsAffected()))
	}
	return nil
}
