package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the payload of a session token. The user id travels as "sub".
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the validity window of issued tokens.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a token for user. It refuses roles Verify would reject.
func (t *TokenIssuer) Issue(user *domain.User) (string, error) {
	if user.ID == "" || !user.Role.Valid() {
		return "", fmt.Errorf("issue token: invalid subject %q or role %q", user.ID, user.Role)
	}
	now := t.now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature, algorithm and expiry, and returns the identity the
// token was issued for. Every failure collapses into domain.ErrInvalidToken.
func (t *TokenIssuer) Verify(token string) (*domain.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
