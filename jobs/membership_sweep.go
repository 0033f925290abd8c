package jobs

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/grace-gov/grace-api/internal/jobs"
	"github.com/grace-gov/grace-api/internal/shared"
)

// MembershipSweepJob flags memberships whose end date has passed. Queries
// already filter by validity window, so the sweep exists for reporting and
// to keep the membership roll tidy, not for correctness.
type MembershipSweepJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	audit   *shared.AuditLogger
	metrics *jobmetrics.Metrics
}

// NewMembershipSweepJob constructs the sweep job.
func NewMembershipSweepJob(pool *pgxpool.Pool, logger *slog.Logger) *MembershipSweepJob {
	return &MembershipSweepJob{
		pool:    pool,
		logger:  logger,
		audit:   shared.NewAuditLogger(pool),
		metrics: jobmetrics.NewMetrics(nil),
	}
}

// Handle processes TaskMembershipSweep tasks.
func (j *MembershipSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("membership_sweep")
	return tracker.End(j.handle(ctx, t))
}

func (j *MembershipSweepJob) handle(ctx context.Context, t *asynq.Task) error {
	var payload MembershipSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	tag, err := j.pool.Exec(ctx,
		`UPDATE committee_members SET lapsed_at = NOW()
		 WHERE end_date IS NOT NULL AND end_date < $1 AND lapsed_at IS NULL`,
		asOf)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("membership sweep",
			slog.Time("as_of", asOf),
			slog.Int64("lapsed", tag.RowsAffected()))
	}
	if tag.RowsAffected() > 0 {
		// system actor: the sweep runs unattended
		_ = j.audit.Record(ctx, shared.AuditLog{
			Action:   "MEMBER_LAPSE",
			Entity:   "committee_members",
			EntityID: asOf.Format("2006-01-02"),
			Meta:     map[string]any{"lapsed": tag.RowsAffected()},
		})
	}
	return nil
}
