package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SeedSubject is the only subject a seed trigger token may carry.
const SeedSubject = "seed"

var (
	// ErrDisabled is returned when no signing secret is configured.
	ErrDisabled = errors.New("seed tokens are disabled")
	// ErrInvalidToken covers every verification failure.
	ErrInvalidToken = errors.New("invalid seed token")
)

// Issuer mints and checks short-lived HS256 tokens that authorise a seeding run.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewIssuer returns an Issuer for secret. An empty secret yields a disabled Issuer.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), TTL: ttl}
}

// Enabled reports whether tokens are required.
func (i *Issuer) Enabled() bool {
	return i != nil && len(i.Secret) > 0
}

// Issue signs a token valid from now for TTL.
func (i *Issuer) Issue(now time.Time) (string, error) {
	if !i.Enabled() {
		return "", ErrDisabled
	}

	claims := jwt.RegisteredClaims{
		Subject:   SeedSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, subject and expiry.
func (i *Issuer) Verify(token string) error {
	if !i.Enabled() {
		return ErrDisabled
	}

	clock := i.Clock
	if clock == nil {
		clock = time.Now
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(SeedSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clock),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}
