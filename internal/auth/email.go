package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/hudl-events/apiserver/internal/store"
	"github.com/hudl-events/apiserver/types"
)

// UserByEmail is the lookup the email verifier needs from the identity
// store; it must return store.ErrNotFound for unknown emails.
type UserByEmail interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// EmailVerifier checks an email/password pair against the stored bcrypt
// hash. Unknown email, missing hash, and wrong password are all
// ErrInvalidCredentials so responses do not reveal which accounts exist.
type EmailVerifier struct {
	users UserByEmail
}

func NewEmailVerifier(users UserByEmail) *EmailVerifier {
	return &EmailVerifier{users: users}
}

func (v *EmailVerifier) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	emailCreds, ok := creds.(EmailCredentials)
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}

	email := NormalizeEmail(emailCreds.Email)
	if email == "" || emailCreds.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}

	if user.PasswordHash == nil || !CheckPassword(*user.PasswordHash, emailCreds.Password) {
		return Identity{}, ErrInvalidCredentials
	}

	identity := Identity{Provider: types.ProviderEmail, Subject: email, Email: email}
	if user.FullName != nil {
		identity.Username = *user.FullName
	}
	return identity, nil
}

// NormalizeEmail lower-cases and trims an email so lookups behave
// case-insensitively even though the store matches exactly.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
