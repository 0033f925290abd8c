package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grace-gov/grace-api/internal/shared"
)

// PGRepository provides PostgreSQL backed reads for context assembly.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// OrganizationID fetches the organization from the principal's profile row.
func (r *PGRepository) OrganizationID(ctx context.Context, userID uuid.UUID) (uuid.NullUUID, error) {
	var orgID uuid.NullUUID
	err := r.pool.QueryRow(ctx,
		`SELECT organization_id FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No profile is not an error: the context simply has no
			// organization.
			return uuid.NullUUID{}, nil
		}
		return uuid.NullUUID{}, err
	}
	return orgID, nil
}

// RoleAssignments fetches all role rows for the principal.
func (r *PGRepository) RoleAssignments(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, committee_id FROM user_roles WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []RoleAssignment
	for rows.Next() {
		var a RoleAssignment
		if err := rows.Scan(&a.Role, &a.CommitteeID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ActiveMembershipCommittees fetches committee ids for memberships whose end
// date is null or has not yet passed.
func (r *PGRepository) ActiveMembershipCommittees(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT committee_id FROM committee_members
		 WHERE user_id = $1 AND (end_date IS NULL OR end_date >= CURRENT_DATE)`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CommitteeOrganization resolves a committee to its owning organization.
func (r *PGRepository) CommitteeOrganization(ctx context.Context, committeeID uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT organization_id FROM committees WHERE id = $1`,
		committeeID,
	).Scan(&orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.UUID{}, shared.ErrNotFound
		}
		return uuid.UUID{}, err
	}
	return orgID, nil
}

// HasCommitteeRole reports whether any committee-scoped role row exists for
// the (principal, committee) pair.
func (r *PGRepository) HasCommitteeRole(ctx context.Context, userID, committeeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND committee_id = $2)`,
		userID, committeeID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

var _ Repository = (*PGRepository)(nil)
