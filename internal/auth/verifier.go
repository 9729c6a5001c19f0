// Package auth implements the credential verifiers that turn
// provider-specific proof into a confirmed external identity, plus the
// session-token and password primitives the orchestrator builds on.
package auth

import (
	"context"

	"github.com/hudl-events/apiserver/types"
)

// Identity is a verified (provider, subject) pair with whatever display
// metadata the provider shared. Subject is the provider-specific ID: the
// lower-cased email, the checksummed wallet address, or the Discord
// snowflake.
type Identity struct {
	Provider  types.AuthProvider
	Subject   string
	Email     string
	Username  string
	AvatarURL string
}

// Credentials is provider-specific proof of identity.
type Credentials interface {
	Provider() types.AuthProvider
}

// EmailCredentials prove an email identity with a password.
type EmailCredentials struct {
	Email    string
	Password string
}

func (EmailCredentials) Provider() types.AuthProvider { return types.ProviderEmail }

// DiscordCredentials carry the OAuth2 authorization code from the callback.
type DiscordCredentials struct {
	Code string
}

func (DiscordCredentials) Provider() types.AuthProvider { return types.ProviderDiscord }

// WalletCredentials carry a signed sign-in message. The signature must be
// a personal_sign signature of Message by the key controlling Address.
type WalletCredentials struct {
	Address   string
	Signature string
	Message   string
}

func (WalletCredentials) Provider() types.AuthProvider { return types.ProviderWallet }

// Verifier converts Credentials into a verified Identity. Implementations
// return ErrInvalidCredentials, ErrInvalidSignature, or an upstream error;
// adding a provider means adding an implementation, not editing the
// orchestrator.
type Verifier interface {
	Verify(ctx context.Context, creds Credentials) (Identity, error)
}
