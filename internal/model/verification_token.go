package model

import (
	"context"
	"time"
)

// VerificationTokenTTL bounds how long a password-reset authorization stays
// redeemable.
const VerificationTokenTTL = 30 * time.Minute

// VerificationTokenStore persists single-use password-reset authorizations.
type VerificationTokenStore interface {
	Create(ctx context.Context, token VerificationToken) error
	Exists(ctx context.Context, token string) (bool, error)
	// Consume marks the token used and returns false if it was already
	// consumed, expired or never issued. Exactly one call can succeed for
	// a given token.
	Consume(ctx context.Context, token string) (bool, error)
}

// VerificationToken authorizes exactly one password change for the identity
// it was issued to.
type VerificationToken struct {
	Token     string
	Email     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
