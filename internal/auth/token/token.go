// Package token issues and verifies the application access token handed
// out after a successful external login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrInvalidToken = errors.New("token: invalid")
	ErrExpiredToken = errors.New("token: expired")
)

// Claims is the verified content of an application token.
type Claims struct {
	UserID    string
	SessionID string
	Name      string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type appClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	clock    clockwork.Clock
}

func NewIssuer(secret, issuer, audience string, clock clockwork.Clock) (*Issuer, error) {
	if secret == "" || issuer == "" || audience == "" {
		return nil, errors.New("token: secret, issuer and audience are required")
	}
	if clock == nil {
		return nil, errors.New("token: clock is required")
	}
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		clock:    clock,
	}, nil
}

// Issue signs a token for c. ExpiresAt must be set; IssuedAt defaults to now.
func (i *Issuer) Issue(c Claims) (string, error) {
	if c.UserID == "" || c.SessionID == "" {
		return "", errors.New("token: user id and session id are required")
	}
	if c.ExpiresAt.IsZero() {
		return "", errors.New("token: expiry is required")
	}
	issuedAt := c.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = i.clock.Now()
	}

	claims := appClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   c.UserID,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
			ID:        uuid.NewString(),
		},
		SessionID: c.SessionID,
		Name:      c.Name,
		Email:     c.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry.
func (i *Issuer) Verify(raw string) (Claims, error) {
	var parsed appClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.Subject == "" || parsed.SessionID == "" {
		return Claims{}, fmt.Errorf("%w: missing sub or sid", ErrInvalidToken)
	}

	claims := Claims{
		UserID:    parsed.Subject,
		SessionID: parsed.SessionID,
		Name:      parsed.Name,
		Email:     parsed.Email,
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	return claims, nil
}
