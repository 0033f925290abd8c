package committees

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grace-gov/grace-api/internal/platform/httpx"
)

// Repository defines persistence operations for the committees module.
type Repository interface {
	ListAll(ctx context.Context) ([]Committee, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Committee, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Committee, error)
	Get(ctx context.Context, id uuid.UUID) (*Committee, error)
	AddMember(ctx context.Context, m Membership) error
	EndMembership(ctx context.Context, committeeID, userID uuid.UUID, endDate time.Time) error
}

const committeeColumns = `id, organization_id, name, description, created_at, updated_at`

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListAll returns every committee ordered by name.
func (r *PGRepository) ListAll(ctx context.Context) ([]Committee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+committeeColumns+` FROM committees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCommittees(rows)
}

// ListByOrganization returns committees belonging to the organization.
func (r *PGRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Committee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+committeeColumns+` FROM committees WHERE organization_id = $1 ORDER BY name`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCommittees(rows)
}

// ListByIDs returns the committees in the given id set.
func (r *PGRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Committee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+committeeColumns+` FROM committees WHERE id = ANY($1) ORDER BY name`,
		ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCommittees(rows)
}

// Get fetches one committee.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Committee, error) {
	var c Committee
	err := r.pool.QueryRow(ctx,
		`SELECT `+committeeColumns+` FROM committees WHERE id = $1`, id,
	).Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// AddMember inserts a membership row. An open membership already covering
// the pair surfaces as httpx.ErrDuplicate.
func (r *PGRepository) AddMember(ctx context.Context, m Membership) error {
	endDate := pgtype.Date{}
	if m.EndDate != nil {
		endDate = pgtype.Date{Time: *m.EndDate, Valid: true}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO committee_members (user_id, committee_id, start_date, end_date) VALUES ($1, $2, $3, $4)`,
		m.UserID, m.CommitteeID, m.StartDate, endDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// EndMembership closes the open membership window for the pair.
func (r *PGRepository) EndMembership(ctx context.Context, committeeID, userID uuid.UUID, endDate time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE committee_members SET end_date = $3
		 WHERE committee_id = $1 AND user_id = $2 AND (end_date IS NULL OR end_date >= CURRENT_DATE)`,
		committeeID, userID, endDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanCommittees(rows pgx.Rows) ([]Committee, error) {
	var committees []Committee
	for rows.Next() {
		var c Committee
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		committees = append(committees, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return committees, nil
}

var _ Repository = (*PGRepository)(nil)
