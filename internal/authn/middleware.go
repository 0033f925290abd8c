package authn

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
	"github.com/grace-gov/grace-api/internal/shared"
)

// Middleware runs the full authentication pipeline per request: bearer
// extraction, the verification chain, identity resolution and user-context
// loading. The context is rebuilt from scratch on every request; nothing is
// cached across requests.
type Middleware struct {
	Chain    *Chain
	Resolver *Resolver
	Loader   *authz.Loader
	Logger   *slog.Logger
}

// Authenticate terminates unauthenticated requests and attaches the
// Principal and UserContext for everyone else.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}

		claims, err := m.Chain.Verify(r.Context(), token)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}

		principal, err := m.Resolver.Resolve(r.Context(), claims)
		if err != nil {
			if errors.Is(err, shared.ErrUserNotProvisioned) {
				// Distinct internally for logging, identical externally.
				if m.Logger != nil {
					m.Logger.Warn("verified claims without local account",
						slog.String("source", string(claims.Source)))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if m.Logger != nil {
				m.Logger.Error("identity resolution", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}

		uc, err := m.Loader.Load(r.Context(), principal.ID, principal.Email)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("user context load", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}

		ctx := ContextWithPrincipal(r.Context(), principal)
		ctx = authz.ContextWithUser(ctx, uc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
