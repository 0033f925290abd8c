package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EntraConfig configures the federated verification path against a
// Microsoft Entra ID tenant.
type EntraConfig struct {
	TenantID string
	ClientID string
}

// IssuerURL returns the tenant's v2 issuer URL.
func (c EntraConfig) IssuerURL() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", c.TenantID)
}

// JWKSURL returns the tenant's key discovery endpoint.
func (c EntraConfig) JWKSURL() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/discovery/v2.0/keys", c.TenantID)
}

// entraClaims is the subset of Entra token claims the resolver consumes.
type entraClaims struct {
	ObjectID          string `json:"oid"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	jwt.RegisteredClaims
}

// EntraVerifier validates tokens issued by the organization's SSO tenant:
// RS256 signature against the issuer's published keys resolved by kid,
// audience equal to the configured client id, issuer equal to the tenant's
// v2 issuer URL.
type EntraVerifier struct {
	config EntraConfig
	keys   KeyProvider
	parser *jwt.Parser
}

// NewEntraVerifier constructs the federated strategy.
func NewEntraVerifier(config EntraConfig, keys KeyProvider) *EntraVerifier {
	return &EntraVerifier{
		config: config,
		keys:   keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(config.ClientID),
			jwt.WithIssuer(config.IssuerURL()),
			jwt.WithExpirationRequired(),
		),
	}
}

// Name returns "entra".
func (v *EntraVerifier) Name() string { return "entra" }

// Verify checks the token against the federated trust root.
func (v *EntraVerifier) Verify(ctx context.Context, tokenString string) (Claims, Outcome, error) {
	var claims entraClaims
	token, err := v.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return v.keys.GetKey(ctx, kid)
	})
	if err != nil || !token.Valid {
		return Claims{}, OutcomeFailed, err
	}

	email := claims.PreferredUsername
	if email == "" {
		email = claims.Email
	}
	if email == "" {
		return Claims{}, OutcomeFailed, errors.New("token carries no usable email claim")
	}

	return Claims{
		Source: SourceFederated,
		Email:  email,
	}, OutcomeVerified, nil
}

var _ Strategy = (*EntraVerifier)(nil)
