package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password;
// callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidSignature is returned when a wallet signature does not verify
// against the claimed address and message.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrAuthorizationDenied is returned when the OAuth consent was declined
// or no authorization code was supplied.
var ErrAuthorizationDenied = errors.New("authorization denied")

// ErrUpstreamTimeout is returned when the identity provider did not answer
// within the request deadline.
var ErrUpstreamTimeout = errors.New("upstream provider timeout")

// UpstreamError reports a non-success response from the identity provider,
// preserving the upstream status and body.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream auth error: status %d: %s", e.Status, e.Body)
}
