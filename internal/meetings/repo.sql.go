package meetings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the meetings module.
type Repository interface {
	ListAll(ctx context.Context) ([]Meeting, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Meeting, error)
	ListByCommittees(ctx context.Context, committeeIDs []uuid.UUID) ([]Meeting, error)
}

const meetingColumns = `m.id, m.committee_id, m.title, m.scheduled_at, m.location, m.status`

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListAll returns every meeting, newest first.
func (r *PGRepository) ListAll(ctx context.Context) ([]Meeting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+meetingColumns+` FROM meetings m ORDER BY m.scheduled_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeetings(rows)
}

// ListByOrganization returns meetings of committees in the organization.
func (r *PGRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Meeting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+meetingColumns+` FROM meetings m
		 JOIN committees c ON c.id = m.committee_id
		 WHERE c.organization_id = $1
		 ORDER BY m.scheduled_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeetings(rows)
}

// ListByCommittees returns meetings of the given committees.
func (r *PGRepository) ListByCommittees(ctx context.Context, committeeIDs []uuid.UUID) ([]Meeting, error) {
	if len(committeeIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+meetingColumns+` FROM meetings m
		 WHERE m.committee_id = ANY($1)
		 ORDER BY m.scheduled_at DESC`, committeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeetings(rows)
}

func scanMeetings(rows pgx.Rows) ([]Meeting, error) {
	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		if err := rows.Scan(&m.ID, &m.CommitteeID, &m.Title, &m.ScheduledAt, &m.Location, &m.Status); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meetings, nil
}

var _ Repository = (*PGRepository)(nil)
