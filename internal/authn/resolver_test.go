package authn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-gov/grace-api/internal/authn"
	"github.com/grace-gov/grace-api/internal/shared"
)

type stubIdentities struct {
	byID    map[uuid.UUID]*authn.Principal
	byEmail map[string]*authn.Principal
	idErr   error
	mailErr error
}

func (s *stubIdentities) FindByID(ctx context.Context, id uuid.UUID) (*authn.Principal, error) {
	if s.idErr != nil {
		return nil, s.idErr
	}
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubIdentities) FindByEmail(ctx context.Context, email string) (*authn.Principal, error) {
	if s.mailErr != nil {
		return nil, s.mailErr
	}
	if p, ok := s.byEmail[email]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func TestResolveLocalClaimsByID(t *testing.T) {
	p := &authn.Principal{ID: uuid.New(), Email: "member@council.test"}
	resolver := authn.NewResolver(&stubIdentities{byID: map[uuid.UUID]*authn.Principal{p.ID: p}})

	got, err := resolver.Resolve(context.Background(), authn.Claims{Source: authn.SourceLocal, UserID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestResolveLocalClaimsFallBackToEmail(t *testing.T) {
	// A token issued before a re-provisioning can carry a stale id while
	// the email still matches the new account row.
	p := &authn.Principal{ID: uuid.New(), Email: "member@council.test"}
	resolver := authn.NewResolver(&stubIdentities{byEmail: map[string]*authn.Principal{p.Email: p}})

	got, err := resolver.Resolve(context.Background(), authn.Claims{
		Source: authn.SourceLocal,
		UserID: uuid.New(),
		Email:  p.Email,
	})
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestResolveFederatedClaimsByEmail(t *testing.T) {
	p := &authn.Principal{ID: uuid.New(), Email: "sso@council.test"}
	resolver := authn.NewResolver(&stubIdentities{byEmail: map[string]*authn.Principal{p.Email: p}})

	got, err := resolver.Resolve(context.Background(), authn.Claims{Source: authn.SourceFederated, Email: p.Email})
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestResolveMissingAccountIsNotProvisioned(t *testing.T) {
	resolver := authn.NewResolver(&stubIdentities{})

	_, err := resolver.Resolve(context.Background(), authn.Claims{Source: authn.SourceFederated, Email: "ghost@council.test"})
	assert.ErrorIs(t, err, shared.ErrUserNotProvisioned)

	_, err = resolver.Resolve(context.Background(), authn.Claims{Source: authn.SourceLocal, UserID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrUserNotProvisioned)
}

func TestResolveStorageFaultIsNotUnauthenticated(t *testing.T) {
	dbErr := errors.New("connection reset")
	resolver := authn.NewResolver(&stubIdentities{idErr: dbErr, mailErr: dbErr})

	_, err := resolver.Resolve(context.Background(), authn.Claims{Source: authn.SourceLocal, UserID: uuid.New()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrUserNotProvisioned)
	assert.ErrorIs(t, err, dbErr)
}
