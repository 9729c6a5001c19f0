package auth

import (
	"crypto/rand"
	"encoding/base64"
)

const sessionTokenBytes = 32

// NewSessionToken mints an opaque bearer token: 32 random bytes,
// base64url-encoded (256 bits of entropy). Tokens are never derived from
// user data and never reused.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
