package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hudl-events/apiserver/internal/store"
	"github.com/hudl-events/apiserver/types"
)

type emailLookupFunc func(ctx context.Context, email string) (types.User, error)

func (f emailLookupFunc) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return f(ctx, email)
}

func TestEmailVerify(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	name := "Alice"
	users := emailLookupFunc(func(ctx context.Context, email string) (types.User, error) {
		if email != "alice@example.com" {
			return types.User{}, store.ErrNotFound
		}
		return types.User{FullName: &name, PasswordHash: &hash}, nil
	})

	identity, err := NewEmailVerifier(users).Verify(context.Background(), EmailCredentials{
		Email:    "  Alice@Example.COM ",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Subject != "alice@example.com" || identity.Username != "Alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestEmailVerifyRejections(t *testing.T) {
	hash, _ := HashPassword("hunter2")
	users := emailLookupFunc(func(ctx context.Context, email string) (types.User, error) {
		switch email {
		case "alice@example.com":
			return types.User{PasswordHash: &hash}, nil
		case "oauth-only@example.com":
			return types.User{}, nil // no password hash
		default:
			return types.User{}, store.ErrNotFound
		}
	})
	v := NewEmailVerifier(users)

	cases := []struct {
		name  string
		creds EmailCredentials
	}{
		{"unknown email", EmailCredentials{Email: "nobody@example.com", Password: "hunter2"}},
		{"wrong password", EmailCredentials{Email: "alice@example.com", Password: "wrong"}},
		{"no stored hash", EmailCredentials{Email: "oauth-only@example.com", Password: "hunter2"}},
		{"empty password", EmailCredentials{Email: "alice@example.com", Password: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tc.creds); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("want ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "secret") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "other") {
		t.Fatal("wrong password accepted")
	}
}

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	b, err := NewSessionToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if a == b {
		t.Fatal("tokens must be unique")
	}
	if len(a) != 43 { // 32 bytes, base64url without padding
		t.Fatalf("unexpected token length %d", len(a))
	}
}
