package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/grace-gov/grace-api/internal/authn"
	"github.com/grace-gov/grace-api/internal/shared"
)

// Service wraps authentication business rules for the local login flow.
type Service struct {
	repo        Repository
	tokens      *authn.LocalTokens
	revocations authn.RevocationStore
	audit       *shared.AuditLogger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *authn.LocalTokens, revocations authn.RevocationStore, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, tokens: tokens, revocations: revocations, audit: audit}
}

// Login validates email/password credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, time.Now().UTC())
	if err != nil {
		return "", nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  user.ID,
			Action:   "LOGIN",
			Entity:   "users",
			EntityID: user.ID.String(),
		})
	}
	return token, user, nil
}

// Logout revokes the presented token for its remaining life. Tokens that
// cannot be parsed are ignored: they would not verify anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	tokenID, remaining := s.tokens.RemainingLife(token, time.Now().UTC())
	if tokenID == "" || remaining <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, tokenID, remaining)
}
