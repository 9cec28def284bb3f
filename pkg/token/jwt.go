package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of issued tokens.
const DefaultTTL = 12 * time.Hour

// ErrExpired is returned for expired tokens. It wraps ErrInvalid.
var ErrExpired = fmt.Errorf("%w: expired", ErrInvalid)

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) SignerOption {
	return func(s *Signer) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// Signer issues HMAC-SHA256 signed JWTs carrying a scope claim.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ Verifier = (*Signer)(nil)
	_ Issuer   = (*Signer)(nil)
)

// NewSigner builds a signer. The secret must be at least 16 bytes.
func NewSigner(secret []byte, opts ...SignerOption) (*Signer, error) {
	if len(secret) < 16 {
		return nil, errors.New("token: secret must be at least 16 bytes")
	}
	s := &Signer{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Signer) Issue(_ context.Context, scope string) (string, error) {
	if scope == "" {
		return "", errors.New("token: scope is required")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"scope": scope,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

func (s *Signer) Verify(_ context.Context, raw, scope string) error {
	if raw == "" {
		return ErrInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.Parse(raw, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return ErrInvalid
	}
	if got, _ := claims["scope"].(string); got != scope {
		return fmt.Errorf("%w: scope mismatch", ErrInvalid)
	}
	return nil
}
