package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestHMACTokenValidator_AcceptsValidToken(t *testing.T) {
	secret := []byte("test-secret")
	v, err := NewHMACTokenValidator(secret, "", "")
	require.NoError(t, err)

	signed := signToken(t, secret, jwt.MapClaims{
		"sub": "agent-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := v.ValidateToken(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", principal.GetSubject())
}

func TestHMACTokenValidator_RejectsWrongSecret(t *testing.T) {
	v, err := NewHMACTokenValidator([]byte("correct-secret"), "", "")
	require.NoError(t, err)

	signed := signToken(t, []byte("wrong-secret"), jwt.MapClaims{"sub": "agent-1"})

	_, err = v.ValidateToken(context.Background(), signed)
	assert.Error(t, err)
}

func TestHMACTokenValidator_RejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	v, err := NewHMACTokenValidator(secret, "", "")
	require.NoError(t, err)

	signed := signToken(t, secret, jwt.MapClaims{
		"sub": "agent-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err = v.ValidateToken(context.Background(), signed)
	assert.Error(t, err)
}

func TestHMACTokenValidator_RejectsIssuerMismatch(t *testing.T) {
	secret := []byte("test-secret")
	v, err := NewHMACTokenValidator(secret, "mcp-filesystem", "")
	require.NoError(t, err)

	signed := signToken(t, secret, jwt.MapClaims{
		"sub": "agent-1",
		"iss": "someone-else",
	})

	_, err = v.ValidateToken(context.Background(), signed)
	assert.Error(t, err)
}

func TestNewHMACTokenValidator_RejectsEmptySecret(t *testing.T) {
	_, err := NewHMACTokenValidator(nil, "", "")
	assert.Error(t, err)
}

func TestContextWithPrincipal_RoundTrips(t *testing.T) {
	p := &jwtPrincipal{claims: jwt.MapClaims{"sub": "agent-1"}}
	ctx := ContextWithPrincipal(context.Background(), p)

	got, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "agent-1", got.GetSubject())
}
