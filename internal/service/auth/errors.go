package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// doesn't match the signing key.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingSubject indicates a structurally valid token without a
	// subject claim, which makes it unusable for identity resolution.
	ErrMissingSubject = errors.New("authentication token has no subject")

	// ErrPasswordMismatch indicates the plaintext password does not match
	// the stored digest.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrMalformedHash indicates a stored digest that bcrypt cannot parse.
	// This is a data problem, not a wrong password, but callers collapse
	// both into the same client-facing outcome.
	ErrMalformedHash = errors.New("invalid credential format")

	// ErrUnauthorized is the single outcome of identity resolution failure.
	// Every internal cause (bad signature, expiry, unknown subject) maps to
	// it so that callers cannot probe which part of a credential was wrong.
	ErrUnauthorized = errors.New("unauthorized")
)
