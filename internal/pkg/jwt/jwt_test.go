package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, s string) {
	t.Helper()
	prev := secret
	SetSecret(s)
	t.Cleanup(func() { secret = prev })
}

func TestSignParseRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := Sign("user-1", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := Sign("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	withSecret(t, "secret-a")
	token, err := Sign("user-1", time.Hour)
	require.NoError(t, err)

	withSecret(t, "secret-b")
	_, err = Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	withSecret(t, "test-secret")

	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
