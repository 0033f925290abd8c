package authz

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/grace-gov/grace-api/internal/platform/httpx"
)

// Middleware wires authorization helpers for HTTP handlers. It assumes the
// authentication middleware already attached a UserContext.
type Middleware struct {
	Evaluator *Evaluator
	Logger    *slog.Logger
}

// RequireRole allows the request when the user holds at least one of the
// given roles. Denials carry the required versus held roles.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uc := UserFromContext(r.Context())
			if uc == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if err := m.Evaluator.RequireRole(uc, roles...); err != nil {
				m.deny(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows admin and super_admin only.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.RequireRole(RoleAdmin, RoleSuperAdmin)
}

// RequireOrganizationAccess checks the organizationId scope hint, when
// present, against the user's organization.
func (m Middleware) RequireOrganizationAccess() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uc := UserFromContext(r.Context())
			if uc == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if err := m.Evaluator.RequireOrganizationAccess(uc, ScopeHint(r, ScopeOrganization)); err != nil {
				m.deny(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCommitteeAccess resolves the committeeId scope hint and rejects
// requests whose committee the user cannot see. Requests without a hint pass
// through: listing handlers apply the committee filter themselves.
func (m Middleware) RequireCommitteeAccess() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uc := UserFromContext(r.Context())
			if uc == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			hint := ScopeHint(r, ScopeCommittee)
			if !hint.Valid {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := m.Evaluator.CheckCommitteeAccess(r.Context(), hint.UUID, uc)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("committee access check", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !ok {
				httpx.Forbidden(w, "no access to the requested committee", nil, roleStrings(uc.Roles))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, err error) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		httpx.Forbidden(w, "insufficient role", roleStrings(denied.Required), roleStrings(denied.Current))
		return
	}
	httpx.RespondError(w, err)
}

func roleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
