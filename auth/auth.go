// Package auth provides bearer-token authentication for non-stdio transports.
//
// Stdio transport is trusted by construction (the client is the process
// that spawned the server), so authentication only matters for the
// WebSocket transport, which accepts connections over a socket.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated entity associated with a validated token.
type Principal interface {
	GetSubject() string
	GetClaims() jwt.MapClaims
}

// TokenValidator validates a bearer token and returns the Principal it names.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (Principal, error)
}

type jwtPrincipal struct {
	claims jwt.MapClaims
}

func (p *jwtPrincipal) GetSubject() string {
	sub, _ := p.claims.GetSubject()
	return sub
}

func (p *jwtPrincipal) GetClaims() jwt.MapClaims {
	return p.claims
}

// HMACTokenValidator validates JWTs signed with a single shared HMAC secret.
// This suits a single-operator deployment where the server and the token
// issuer are the same party; it is not a JWKS client.
type HMACTokenValidator struct {
	secret           []byte
	expectedIssuer   string
	expectedAudience string
}

// NewHMACTokenValidator builds a validator against secret. expectedIssuer and
// expectedAudience may be empty to skip those checks.
func NewHMACTokenValidator(secret []byte, expectedIssuer, expectedAudience string) (*HMACTokenValidator, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("auth: secret must not be empty")
	}
	return &HMACTokenValidator{secret: secret, expectedIssuer: expectedIssuer, expectedAudience: expectedAudience}, nil
}

// ValidateToken parses and verifies tokenString, checking signature, expiry,
// and the configured issuer/audience.
func (v *HMACTokenValidator) ValidateToken(ctx context.Context, tokenString string) (Principal, error) {
	var opts []jwt.ParserOption
	if v.expectedIssuer != "" {
		opts = append(opts, jwt.WithIssuer(v.expectedIssuer))
	}
	if v.expectedAudience != "" {
		opts = append(opts, jwt.WithAudience(v.expectedAudience))
	}
	opts = append(opts, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: token failed validation")
	}

	return &jwtPrincipal{claims: claims}, nil
}

// principalKeyType is an unexported context key type to avoid collisions.
type principalKeyType struct{}

var principalKey = principalKeyType{}

// ContextWithPrincipal returns a child context carrying principal.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext retrieves the Principal embedded by ContextWithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
