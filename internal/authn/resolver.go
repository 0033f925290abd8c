package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/shared"
)

// Principal is an authenticated identity for the duration of one request.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// IdentityRepository maps verified claims to local accounts.
type IdentityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
}

// Resolver maps verified claims to a local Principal.
type Resolver struct {
	repo IdentityRepository
}

// NewResolver constructs a Resolver.
func NewResolver(repo IdentityRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve finds the local account behind the claims. Local claims look up by
// user id first; a valid local signature without a matching row falls
// through to the email path rather than failing outright. Federated claims
// look up by exact email as stored. A missing account yields
// shared.ErrUserNotProvisioned; auto-provisioning is never performed. Any
// other data-access fault surfaces as an internal error, never as
// "unauthenticated": the caller must be able to tell "user doesn't exist"
// apart from "we couldn't check".
func (r *Resolver) Resolve(ctx context.Context, claims Claims) (*Principal, error) {
	if claims.Source == SourceLocal {
		principal, err := r.repo.FindByID(ctx, claims.UserID)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("authn: resolve by id: %w", err)
		}
	}

	if claims.Email == "" {
		return nil, shared.ErrUserNotProvisioned
	}
	principal, err := r.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUserNotProvisioned
		}
		return nil, fmt.Errorf("authn: resolve by email: %w", err)
	}
	return principal, nil
}
