package auth

import (
	"testing"
	"time"

	"github.com/goldstore/storefront/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

func TestDecodeTokenReadsClaimsWithoutVerifying(t *testing.T) {
	expired := jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token, err := SignForTest(Claims{
		UserID: "42",
		Email:  "ana@goldstore.test",
		Role:   enums.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: expired,
		},
	}, "backend-secret")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	claims, err := DecodeToken("Bearer " + token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected role admin, got %s", claims.Role)
	}
	if claims.Identity() != "42" {
		t.Fatalf("expected identity 42, got %s", claims.Identity())
	}
	if claims.Email != "ana@goldstore.test" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
}

func TestDecodeTokenFallsBackToSubject(t *testing.T) {
	token, err := SignForTest(Claims{
		Role:             enums.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"},
	}, "s")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	claims, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if claims.Identity() != "sub-1" {
		t.Fatalf("expected sub-1, got %s", claims.Identity())
	}
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := DecodeToken(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestSignForTestRequiresSecret(t *testing.T) {
	if _, err := SignForTest(Claims{}, ""); err == nil {
		t.Fatalf("expected error without secret")
	}
}
