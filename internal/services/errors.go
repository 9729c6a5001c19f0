package services

import "errors"

// ErrBadRequest is returned when a flow is missing required input.
var ErrBadRequest = errors.New("missing or invalid input")

// ErrAlreadyExists is returned when sign-up targets an identity that is
// already registered.
var ErrAlreadyExists = errors.New("user already exists")

// ErrNotAuthenticated is returned when no valid session backs a request.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrStaleNonce is returned when a wallet sign-in message carries a nonce
// that was never issued, already consumed, or expired. A replayed message
// must not reveal which of the three happened.
var ErrStaleNonce = errors.New("stale or unknown nonce")
