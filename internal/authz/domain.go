// Package authz resolves the per-request authorization context and evaluates
// role, organization and committee access for it.
package authz

import (
	"sort"

	"github.com/google/uuid"
)

// Role is a named permission tag. The set is closed: values outside it are
// ignored when a context is loaded.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleSpeaker        Role = "speaker"
	RoleChair          Role = "chair"
	RoleDeputyChair    Role = "deputy_chair"
	RoleWhip           Role = "whip"
	RoleMember         Role = "member"
	RoleExternalMember Role = "external_member"
	RoleCoordinator    Role = "coordinator"
	RoleClerk          Role = "clerk"
	RoleLegal          Role = "legal"
	RoleCFO            Role = "cfo"
	RolePublic         Role = "public"
	RoleSuperAdmin     Role = "super_admin"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:          {},
	RoleSpeaker:        {},
	RoleChair:          {},
	RoleDeputyChair:    {},
	RoleWhip:           {},
	RoleMember:         {},
	RoleExternalMember: {},
	RoleCoordinator:    {},
	RoleClerk:          {},
	RoleLegal:          {},
	RoleCFO:            {},
	RolePublic:         {},
	RoleSuperAdmin:     {},
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// RoleAssignment is one row of the role table: a role optionally scoped to a
// committee. A zero CommitteeID means the role is global.
type RoleAssignment struct {
	Role        Role
	CommitteeID uuid.NullUUID
}

// UserContext is the resolved aggregate of a principal's organization, roles
// and visible committees for one request. It is built fresh per request and
// treated as read-only afterwards.
type UserContext struct {
	ID             uuid.UUID
	Email          string
	OrganizationID uuid.NullUUID
	Roles          []Role
	CommitteeIDs   []uuid.UUID
}

// HasRole reports whether the context holds the given role.
func (uc *UserContext) HasRole(role Role) bool {
	for _, r := range uc.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the intersection with the given roles is
// non-empty.
func (uc *UserContext) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if uc.HasRole(r) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the context bypasses all scoping checks.
func (uc *UserContext) IsSuperAdmin() bool {
	return uc.HasRole(RoleSuperAdmin)
}

// IsAdmin reports whether the context holds the organization-scoped admin
// role.
func (uc *UserContext) IsAdmin() bool {
	return uc.HasRole(RoleAdmin)
}

// HasCommittee reports whether the committee is in the visible set.
func (uc *UserContext) HasCommittee(id uuid.UUID) bool {
	for _, c := range uc.CommitteeIDs {
		if c == id {
			return true
		}
	}
	return false
}

// dedupeCommittees unions committee ids with set semantics. The result is
// sorted so it does not depend on row order.
func dedupeCommittees(ids ...[]uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	for _, group := range ids {
		for _, id := range group {
			seen[id] = struct{}{}
		}
	}
	out := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
