package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigbestmart/catalog-backend/pkg/config"
)

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := config.AuthConfig{
		JWTSecret:   "secret",
		JWTIssuer:   "https://auth.bigbestmart.test",
		JWTAudience: "authenticated",
	}
	now := time.Now().UTC()

	token, err := MintAdminToken(cfg, now, AdminTokenPayload{Subject: "admin-1", Email: "ops@bigbestmart.test", Role: "admin"})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}

	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if claims.Subject != "admin-1" || claims.Email != "ops@bigbestmart.test" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.HasRole("ADMIN") || claims.HasRole("editor") || !claims.HasRole("") {
		t.Fatalf("role check mismatch for %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestParseAdminTokenRejections(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", JWTIssuer: "issuer-a"}
	now := time.Now().UTC()

	expired, err := MintAdminToken(cfg, now.Add(-2*time.Hour), AdminTokenPayload{Subject: "a", TTL: time.Hour})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAdminToken(cfg, expired); err == nil {
		t.Fatal("expected expired token to fail")
	}

	otherIssuer, _ := MintAdminToken(config.AuthConfig{JWTSecret: "secret", JWTIssuer: "issuer-b"}, now, AdminTokenPayload{Subject: "a"})
	if _, err := ParseAdminToken(cfg, otherIssuer); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}

	wrongSecret, _ := MintAdminToken(config.AuthConfig{JWTSecret: "other", JWTIssuer: "issuer-a"}, now, AdminTokenPayload{Subject: "a"})
	if _, err := ParseAdminToken(cfg, wrongSecret); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "a", Issuer: "issuer-a"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ParseAdminToken(cfg, unsigned); err == nil {
		t.Fatal("expected unsigned token to fail")
	}

	if _, err := ParseAdminToken(config.AuthConfig{}, "x"); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestAppMetadataRole(t *testing.T) {
	claims := &AdminClaims{Role: "authenticated", AppMetadata: AppMetadata{Role: "admin"}}
	if !claims.HasRole("admin") {
		t.Fatal("expected app_metadata role to satisfy the check")
	}
}
