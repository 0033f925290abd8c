package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/platform/httpx"
	"github.com/grace-gov/grace-api/internal/shared"
)

// DeniedError reports a role check failure with the roles that would have
// been accepted and the roles the caller holds. This is the one place
// internal authorization state is intentionally exposed to clients.
type DeniedError struct {
	Required []Role
	Current  []Role
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: requires one of [%s], user has [%s]",
		joinRoles(e.Required), joinRoles(e.Current))
}

// Is lets errors.Is(err, httpx.ErrForbidden) match denials.
func (e *DeniedError) Is(target error) bool {
	return target == httpx.ErrForbidden
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// OrganizationFilter restricts listing reads by organization. Unrestricted
// is true only for super_admin. When restricted, OrganizationID may be
// invalid, meaning the principal has no organization and the caller decides
// what "no organization" means (typically: see nothing).
type OrganizationFilter struct {
	Unrestricted   bool
	OrganizationID uuid.NullUUID
}

// CommitteeFilter restricts listing reads by committee. Unrestricted is true
// for super_admin and admin, both of which fall back to organization-level
// filtering downstream. When restricted, CommitteeIDs may be empty, meaning
// visible to no committees.
type CommitteeFilter struct {
	Unrestricted bool
	CommitteeIDs []uuid.UUID
}

// Evaluator decides whether a UserContext may act on a requested scope and
// computes filters for list-type reads. Every decision except the committee
// lookups in CheckCommitteeAccess is a pure function of the loaded context.
type Evaluator struct {
	repo Repository
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// RequireRole allows iff the intersection of the held and allowed roles is
// non-empty.
func (e *Evaluator) RequireRole(uc *UserContext, allowed ...Role) error {
	if uc.HasAnyRole(allowed...) {
		return nil
	}
	current := make([]Role, len(uc.Roles))
	copy(current, uc.Roles)
	required := make([]Role, len(allowed))
	copy(required, allowed)
	return &DeniedError{Required: required, Current: current}
}

// RequireAdmin is sugar for RequireRole(admin, super_admin).
func (e *Evaluator) RequireAdmin(uc *UserContext) error {
	return e.RequireRole(uc, RoleAdmin, RoleSuperAdmin)
}

// RequireOrganizationAccess checks whether the context may act on the
// requested organization. super_admin always passes. admin passes only when
// the requested organization matches their own, or when no organization was
// requested at all (the downstream handler then applies the organization
// filter itself). All other roles pass unconditionally here: their
// restriction is committee-level, not organization-level.
func (e *Evaluator) RequireOrganizationAccess(uc *UserContext, requested uuid.NullUUID) error {
	if uc.IsSuperAdmin() {
		return nil
	}
	if !uc.IsAdmin() {
		return nil
	}
	if !requested.Valid {
		return nil
	}
	if uc.OrganizationID.Valid && uc.OrganizationID.UUID == requested.UUID {
		return nil
	}
	return &DeniedError{Required: []Role{RoleAdmin, RoleSuperAdmin}, Current: uc.Roles}
}

// ResolveOrganizationFilter computes the organization restriction for
// listing reads.
func (e *Evaluator) ResolveOrganizationFilter(uc *UserContext) OrganizationFilter {
	if uc.IsSuperAdmin() {
		return OrganizationFilter{Unrestricted: true}
	}
	return OrganizationFilter{OrganizationID: uc.OrganizationID}
}

// ResolveCommitteeFilter computes the committee restriction for listing
// reads. The committee id set is returned verbatim, including empty.
func (e *Evaluator) ResolveCommitteeFilter(uc *UserContext) CommitteeFilter {
	if uc.IsSuperAdmin() || uc.IsAdmin() {
		return CommitteeFilter{Unrestricted: true}
	}
	return CommitteeFilter{CommitteeIDs: uc.CommitteeIDs}
}

// CheckCommitteeAccess decides whether the context may act on one committee.
// super_admin needs no lookup at all, so access holds even for committee ids
// that do not exist in storage. admin requires the committee to belong to
// their organization; a nonexistent committee yields false, not an error.
// Everyone else is tested against the visible set, with a final lookup for a
// committee-scoped role row before giving up: role-derived ids can lag role
// edits made within the same request lifecycle.
func (e *Evaluator) CheckCommitteeAccess(ctx context.Context, committeeID uuid.UUID, uc *UserContext) (bool, error) {
	if uc.IsSuperAdmin() {
		return true, nil
	}
	if uc.IsAdmin() {
		orgID, err := e.repo.CommitteeOrganization(ctx, committeeID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("authz: resolve committee organization: %w", err)
		}
		return uc.OrganizationID.Valid && uc.OrganizationID.UUID == orgID, nil
	}
	if uc.HasCommittee(committeeID) {
		return true, nil
	}
	ok, err := e.repo.HasCommitteeRole(ctx, uc.ID, committeeID)
	if err != nil {
		return false, fmt.Errorf("authz: committee role fallback: %w", err)
	}
	return ok, nil
}
