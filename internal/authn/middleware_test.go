package authn_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-gov/grace-api/internal/authn"
	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/platform/httpx"
)

type stubAuthzRepo struct {
	orgID       uuid.NullUUID
	assignments []authz.RoleAssignment
	memberships []uuid.UUID
}

func (s *stubAuthzRepo) OrganizationID(ctx context.Context, userID uuid.UUID) (uuid.NullUUID, error) {
	return s.orgID, nil
}

func (s *stubAuthzRepo) RoleAssignments(ctx context.Context, userID uuid.UUID) ([]authz.RoleAssignment, error) {
	return s.assignments, nil
}

func (s *stubAuthzRepo) ActiveMembershipCommittees(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.memberships, nil
}

func (s *stubAuthzRepo) CommitteeOrganization(ctx context.Context, committeeID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (s *stubAuthzRepo) HasCommitteeRole(ctx context.Context, userID, committeeID uuid.UUID) (bool, error) {
	return false, nil
}

func authPipeline(t *testing.T, identities authn.IdentityRepository, authzRepo authz.Repository) (authn.Middleware, *authn.LocalTokens) {
	t.Helper()
	tokens := authn.NewLocalTokens("secret", time.Hour, nil)
	mw := authn.Middleware{
		Chain:    authn.NewChain(nil, tokens),
		Resolver: authn.NewResolver(identities),
		Loader:   authz.NewLoader(authzRepo),
	}
	return mw, tokens
}

func TestAuthenticateAttachesPrincipalAndUserContext(t *testing.T) {
	userID := uuid.New()
	committee := uuid.New()
	identities := &stubIdentities{byID: map[uuid.UUID]*authn.Principal{
		userID: {ID: userID, Email: "chair@council.test"},
	}}
	authzRepo := &stubAuthzRepo{
		assignments: []authz.RoleAssignment{{Role: authz.RoleChair}},
		memberships: []uuid.UUID{committee},
	}
	mw, tokens := authPipeline(t, identities, authzRepo)

	var gotPrincipal *authn.Principal
	var gotUser *authz.UserContext
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal = authn.PrincipalFromContext(r.Context())
		gotUser = authz.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	signed, err := tokens.Issue(userID, "chair@council.test", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/committees", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, gotPrincipal)
	assert.Equal(t, userID, gotPrincipal.ID)
	require.NotNil(t, gotUser)
	assert.True(t, gotUser.HasRole(authz.RoleChair))
	assert.True(t, gotUser.HasCommittee(committee))
}

func TestAuthenticateRejectsMissingAndBadTokens(t *testing.T) {
	mw, _ := authPipeline(t, &stubIdentities{}, &stubAuthzRepo{})
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	for name, header := range map[string]string{
		"no header":   "",
		"not bearer":  "Basic abc",
		"junk bearer": "Bearer junk.token.here",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code, name)

		var problem httpx.ProblemDetail
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem), name)
		assert.Equal(t, "authentication required", problem.Detail, name)
	}
}

func TestAuthenticateUnprovisionedUserLooksLikeBadToken(t *testing.T) {
	mw, tokens := authPipeline(t, &stubIdentities{}, &stubAuthzRepo{})
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	signed, err := tokens.Issue(uuid.New(), "ghost@council.test", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, "authentication required", problem.Detail)
}
