package authn

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grace-gov/grace-api/internal/shared"
)

// PGRepository implements IdentityRepository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByID fetches an active user by internal id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Principal, error) {
	var p Principal
	err := r.pool.QueryRow(ctx,
		`SELECT id, email FROM users WHERE id = $1 AND is_active`,
		id,
	).Scan(&p.ID, &p.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByEmail fetches an active user by email. The match is exact and
// case-sensitive as stored.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	var p Principal
	err := r.pool.QueryRow(ctx,
		`SELECT id, email FROM users WHERE email = $1 AND is_active`,
		email,
	).Scan(&p.ID, &p.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ IdentityRepository = (*PGRepository)(nil)
