package types

import "time"

// Session is a time-bounded, revocable bearer credential linking a client
// to a User. Many sessions may reference the same user; each successful
// authentication mints a fresh one.
type Session struct {
	// ID is the unique identifier of the session row.
	ID string `json:"id" db:"id"`

	// UserID references the user this session authenticates.
	UserID string `json:"user_id" db:"user_id"`

	// Token is the opaque high-entropy bearer credential stored in the
	// session cookie. Never exposed in API responses.
	Token string `json:"-" db:"session_token"`

	// ExpiresAt is the absolute expiry. A session is valid only while
	// ExpiresAt is in the future, regardless of whether the row has been
	// swept yet.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt is the timestamp when the session was minted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
