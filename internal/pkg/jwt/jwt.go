package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

var (
	secret = []byte("bookwright-secret-change-me")

	// Only HS256 is ever issued; the parser rejects everything else,
	// including alg=none.
	parser = jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
	)
)

// SetSecret replaces the signing secret. An empty value keeps the
// built-in development secret.
func SetSecret(s string) {
	if s != "" {
		secret = []byte(s)
	}
}

// Claims is the session payload carried inside a token.
type Claims struct {
	UserID string `json:"uid"`
	jwtlib.RegisteredClaims
}

// Sign issues a token for userID that expires after ttl.
func Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}

// Parse verifies a token string and returns its claims.
func Parse(raw string) (*Claims, error) {
	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
