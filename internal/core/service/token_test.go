package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bluecarbon/registry/internal/core/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 0)
	if issuer.TTL() != 7*24*time.Hour {
		t.Fatalf("expected 7 day default ttl, got %s", issuer.TTL())
	}

	tok, err := issuer.Issue(&domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleGovernment})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "u1" || id.Email != "a@b.com" || id.Role != domain.RoleGovernment {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestTokenIssuer_ExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := issuer.Issue(&domain.User{ID: "u1", Role: domain.RoleCommunity})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := NewTokenIssuer(testSecret, time.Hour)
	if _, err := verifier.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	other, _ := NewTokenIssuer("other-secret", time.Hour).Issue(&domain.User{ID: "u1", Role: domain.RoleAdmin})

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "role": "admin",
	}).SignedString([]byte(testSecret))

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "role": "superuser", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	mixedCase, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "role": "Admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "u1", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	for name, tok := range map[string]string{
		"wrong secret": other,
		"no exp":       noExp,
		"unknown role": badRole,
		"mixed case":   mixedCase,
		"wrong alg":    hs512,
		"garbage":      "not-a-token",
	} {
		if _, err := issuer.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestTokenIssuer_IssueRefusesInvalidRole(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	for _, u := range []*domain.User{
		{ID: "u1"},
		{ID: "u1", Role: "Admin"},
		{Role: domain.RoleAdmin},
	} {
		if tok, err := issuer.Issue(u); err == nil {
			t.Fatalf("%+v: expected error, got token %q", u, tok)
		}
	}
}
