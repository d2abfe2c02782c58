package auth

import (
	"context"
	"time"
)

// JWTService defines operations for issuing and validating session tokens.
//
// Tokens are self-contained: the signing key is the only state shared
// between issuance and validation, so no server-side session store exists.
// The deliberate trade-off is that a leaked token stays valid until its
// natural expiry; there is no revocation path.
type JWTService interface {
	// GenerateToken creates a signed session token whose subject claim is
	// the given user email and whose expiry is now plus the configured
	// token lifetime. Returns the compact token string or an error if
	// signing fails.
	GenerateToken(ctx context.Context, email string) (string, error)

	// GenerateTokenWithTTL is GenerateToken with an explicit validity
	// window, overriding the configured lifetime.
	GenerateTokenWithTTL(ctx context.Context, email string, ttl time.Duration) (string, error)

	// ValidateToken checks the signature and time claims of the given
	// token string and extracts its claims. Returns ErrExpiredToken,
	// ErrInvalidToken, or ErrMissingSubject on failure; callers present all
	// of these to the client as one generic unauthorized outcome.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of a session token.
type Claims struct {
	// Subject is the email of the user the token was issued for.
	Subject string

	// IssuedAt is the instant the token was created.
	IssuedAt time.Time

	// ExpiresAt is the instant the token stops being valid.
	ExpiresAt time.Time

	// ID is the unique token identifier (jti claim).
	ID string
}
