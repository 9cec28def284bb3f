// Package token issues and verifies the scope tokens that guard relation
// mutations and edit submissions.
package token

import (
	"context"
	"errors"
)

// ErrInvalid is returned for tokens that fail verification.
var ErrInvalid = errors.New("token: invalid")

// Verifier checks that token grants scope.
type Verifier interface {
	Verify(ctx context.Context, token, scope string) error
}

// Issuer mints tokens for a scope.
type Issuer interface {
	Issue(ctx context.Context, scope string) (string, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token, scope string) error

// Verify calls fn.
func (fn VerifierFunc) Verify(ctx context.Context, token, scope string) error {
	return fn(ctx, token, scope)
}

// Static accepts exactly one token for every scope. Intended for tests and
// local demos.
func Static(secret string) VerifierFunc {
	return func(_ context.Context, token, _ string) error {
		if secret == "" || token != secret {
			return ErrInvalid
		}
		return nil
	}
}
