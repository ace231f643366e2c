package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken is returned when there is no token to decode.
var ErrEmptyToken = errors.New("auth: empty token")

// DecodeToken reads the claims of a bearer token without verifying its
// signature or expiry. Tokens are opaque to the storefront; this only answers
// "what role does this token claim", and any failure means the persisted
// session is unusable.
func DecodeToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// SignForTest mints an HS256 token carrying claims. The storefront never
// issues tokens itself; this exists for fixtures and local tooling.
func SignForTest(claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
