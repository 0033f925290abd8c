// Package authn turns bearer tokens into resolved principals. Verification
// walks an ordered list of trust strategies; identity resolution then maps
// verified claims onto a local account.
package authn

import (
	"context"
	"net/http"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"github.com/grace-gov/grace-api/internal/shared"
)

// Source identifies which trust path produced a set of claims.
type Source string

const (
	SourceLocal     Source = "local"
	SourceFederated Source = "federated"
)

// Claims is the verified subject claim set shared by both trust paths.
// UserID is set only by the local path; Email only by the federated path.
type Claims struct {
	Source  Source
	UserID  uuid.UUID
	Email   string
	TokenID string
}

// Outcome tags a single strategy's verification attempt.
type Outcome int

const (
	// OutcomeVerified means the strategy accepted the token.
	OutcomeVerified Outcome = iota
	// OutcomeNotApplicable means the token is not of this strategy's kind.
	OutcomeNotApplicable
	// OutcomeFailed means the token is of this kind but did not verify.
	// The chain treats it the same as OutcomeNotApplicable: try the next
	// strategy. Conflating the two mirrors the login flow's behavior, where
	// an expired local session is indistinguishable from a token signed by
	// a different authority.
	OutcomeFailed
)

// Strategy verifies a bearer token against one trust root.
type Strategy interface {
	Name() string
	Verify(ctx context.Context, token string) (Claims, Outcome, error)
}

// Chain tries each strategy in order and stops at the first verification.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain constructs a verification chain.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Verify walks the chain. When every strategy declines, the caller gets
// shared.ErrUnauthenticated without any indication of which path failed.
func (c *Chain) Verify(ctx context.Context, token string) (Claims, error) {
	for _, s := range c.strategies {
		claims, outcome, err := s.Verify(ctx, token)
		switch outcome {
		case OutcomeVerified:
			return claims, nil
		default:
			if err != nil && c.logger != nil {
				c.logger.Debug("token verification declined",
					slog.String("strategy", s.Name()),
					slog.Any("error", err))
			}
		}
	}
	return Claims{}, shared.ErrUnauthenticated
}

// BearerToken extracts the token from an Authorization: Bearer header.
// Missing or malformed headers report failure before any strategy runs.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
