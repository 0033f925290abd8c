package authz

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the read-only persistence operations the loader and
// evaluator depend on. No writes originate from this package.
type Repository interface {
	// OrganizationID returns the principal's organization from their
	// profile. Zero-or-one row: absence yields an invalid NullUUID, not an
	// error.
	OrganizationID(ctx context.Context, userID uuid.UUID) (uuid.NullUUID, error)
	// RoleAssignments returns all role rows for the principal, each
	// optionally carrying a committee id.
	RoleAssignments(ctx context.Context, userID uuid.UUID) ([]RoleAssignment, error)
	// ActiveMembershipCommittees returns committee ids from membership rows
	// whose validity window is still open.
	ActiveMembershipCommittees(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// CommitteeOrganization resolves a committee to its organization.
	// Returns shared.ErrNotFound-wrapped sentinel when the committee does
	// not exist.
	CommitteeOrganization(ctx context.Context, committeeID uuid.UUID) (uuid.UUID, error)
	// HasCommitteeRole reports whether a committee-scoped role row exists
	// for the principal.
	HasCommitteeRole(ctx context.Context, userID, committeeID uuid.UUID) (bool, error)
}
