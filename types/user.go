package types

import "time"

// AuthProvider identifies which credential verifier created an identity.
type AuthProvider string

const (
	// ProviderEmail is an email/password identity.
	ProviderEmail AuthProvider = "email"

	// ProviderWallet is a wallet-signature identity.
	ProviderWallet AuthProvider = "wallet"

	// ProviderDiscord is a Discord OAuth identity.
	ProviderDiscord AuthProvider = "discord"
)

// User represents an account in the system.
// Exactly one of Email, WalletAddress, and DiscordID is populated at
// creation, according to AuthProvider.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's email address. Set for email identities and,
	// when Discord shares it, for Discord identities.
	Email *string `json:"email,omitempty" db:"email"`

	// WalletAddress is the user's wallet address, set for wallet identities.
	WalletAddress *string `json:"wallet_address,omitempty" db:"wallet_address"`

	// DiscordID is the Discord account snowflake, set for Discord identities.
	DiscordID *string `json:"discord_id,omitempty" db:"discord_id"`

	// FullName is the user's display name.
	FullName *string `json:"full_name,omitempty" db:"full_name"`

	// AvatarURL points at the user's avatar image, if any.
	AvatarURL *string `json:"avatar_url,omitempty" db:"avatar_url"`

	// AuthProvider tags which verifier created this identity.
	// Set once at creation and never changed.
	AuthProvider AuthProvider `json:"auth_provider" db:"auth_provider"`

	// IsAdmin grants access to quiz and question management.
	// Only mutated by an explicit out-of-band promotion.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// PasswordHash stores the bcrypt hash for email identities.
	// This field is never exposed in API responses.
	PasswordHash *string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
