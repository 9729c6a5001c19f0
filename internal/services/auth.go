package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hudl-events/apiserver/internal/auth"
	"github.com/hudl-events/apiserver/internal/store"
	"github.com/hudl-events/apiserver/types"
)

// SessionDuration is the fixed lifetime of every minted session.
const SessionDuration = 7 * 24 * time.Hour

const (
	walletNonceTTL    = 5 * time.Minute
	walletNonceMarker = "Nonce: "
)

// UserStore defines persistence operations for identities.
type UserStore interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	CreateWithPassword(ctx context.Context, user types.User, passwordHash string) (types.User, error)
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByWallet(ctx context.Context, address string) (types.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (types.User, error)
	PromoteToAdmin(ctx context.Context, id string) error
}

// SessionStore defines persistence operations for sessions.
type SessionStore interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	ResolveUser(ctx context.Context, token string) (types.User, error)
	Delete(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// NonceStore defines persistence operations for wallet sign-in nonces.
type NonceStore interface {
	Create(ctx context.Context, nonce string, expiresAt time.Time) error
	Consume(ctx context.Context, nonce string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// DiscordAuthenticator is the Discord verifier capability the orchestrator
// needs: code verification plus the pure authorization-URL builder.
type DiscordAuthenticator interface {
	auth.Verifier
	AuthorizationURL() string
}

// AuthService sequences credential verification, user lookup/creation, and
// session issuance for every authentication flow. Every successful flow
// mints exactly one new session; a user row is inserted only on first
// contact with an identity, and races on that insert are settled by the
// store's uniqueness constraints.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	nonces   NonceStore

	email   auth.Verifier
	discord DiscordAuthenticator
	wallet  auth.Verifier

	log *slog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, nonces NonceStore, discord DiscordAuthenticator, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		nonces:   nonces,
		email:    auth.NewEmailVerifier(users),
		discord:  discord,
		wallet:   auth.NewWalletVerifier(),
		log:      log,
	}
}

// SignUpEmail registers a new email identity and signs it in. The caller's
// admin-intent flag never reaches this method: self-service sign-up always
// produces is_admin = false, and promotion happens out-of-band.
func (s *AuthService) SignUpEmail(ctx context.Context, email, password, fullName string) (types.User, string, error) {
	email = auth.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return types.User{}, "", ErrBadRequest
	}

	// Best-effort pre-check; the unique index is the real arbiter.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, "", ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, "", err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.users.CreateWithPassword(ctx, types.User{
		Email:        &email,
		FullName:     &fullName,
		AuthProvider: types.ProviderEmail,
		IsAdmin:      false,
	}, passwordHash)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, "", ErrAlreadyExists
		}
		return types.User{}, "", err
	}

	token, err := s.mintSession(ctx, user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// SignInEmail verifies an email/password pair and mints a session.
func (s *AuthService) SignInEmail(ctx context.Context, email, password string) (types.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return types.User{}, "", ErrBadRequest
	}

	identity, err := s.email.Verify(ctx, auth.EmailCredentials{Email: email, Password: password})
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.users.GetByEmail(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", auth.ErrInvalidCredentials
		}
		return types.User{}, "", err
	}

	token, err := s.mintSession(ctx, user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// DiscordAuthURL returns the provider authorization URL for the client to
// redirect to. No network call.
func (s *AuthService) DiscordAuthURL() string {
	return s.discord.AuthorizationURL()
}

// SignInDiscord completes the OAuth callback: a declined consent or a
// missing code fails before any network traffic; otherwise the code is
// exchanged, the profile fetched, and the identity looked up or created.
func (s *AuthService) SignInDiscord(ctx context.Context, code, upstreamErr string) (types.User, string, error) {
	if upstreamErr != "" || strings.TrimSpace(code) == "" {
		return types.User{}, "", auth.ErrAuthorizationDenied
	}

	identity, err := s.discord.Verify(ctx, auth.DiscordCredentials{Code: code})
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return types.User{}, "", err
	}

	token, err := s.mintSession(ctx, user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// IssueWalletNonce mints a single-use nonce for the wallet sign-in message.
func (s *AuthService) IssueWalletNonce(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	if err := s.nonces.Create(ctx, nonce, time.Now().Add(walletNonceTTL)); err != nil {
		return "", err
	}
	return nonce, nil
}

// WalletSignInMessage builds the message a wallet must sign for the given
// nonce. Kept alongside the parser so the two cannot drift.
func WalletSignInMessage(nonce string) string {
	return fmt.Sprintf("Sign this message to authenticate with HUDL Quiz Platform.\n\n%s%s", walletNonceMarker, nonce)
}

// SignInWallet verifies a signed message, consumes its nonce, and signs the
// wallet in, creating the user on first contact. A failed signature or a
// replayed nonce creates no user and no session.
func (s *AuthService) SignInWallet(ctx context.Context, address, signature, message string) (types.User, string, error) {
	if strings.TrimSpace(address) == "" || strings.TrimSpace(signature) == "" || strings.TrimSpace(message) == "" {
		return types.User{}, "", ErrBadRequest
	}

	nonce, ok := parseWalletNonce(message)
	if !ok {
		return types.User{}, "", ErrBadRequest
	}

	identity, err := s.wallet.Verify(ctx, auth.WalletCredentials{
		Address:   address,
		Signature: signature,
		Message:   message,
	})
	if err != nil {
		return types.User{}, "", err
	}

	if err := s.nonces.Consume(ctx, nonce); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", ErrStaleNonce
		}
		return types.User{}, "", err
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return types.User{}, "", err
	}

	token, err := s.mintSession(ctx, user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// CurrentUser resolves a session token to its user. Absent, unknown, and
// expired tokens all come back as ErrNotAuthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (types.User, error) {
	if token == "" {
		return types.User{}, ErrNotAuthenticated
	}
	user, err := s.sessions.ResolveUser(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrNotAuthenticated
		}
		return types.User{}, err
	}
	return user, nil
}

// SignOut revokes the session behind the token. Idempotent; an absent or
// already-deleted token is not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// PromoteToAdmin grants admin to the user behind an email address. This is
// the only path that sets is_admin; it is never reachable over HTTP.
func (s *AuthService) PromoteToAdmin(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return s.users.PromoteToAdmin(ctx, user.ID)
}

// PurgeExpired sweeps expired sessions and nonces, returning the number of
// sessions removed. Validity never depends on this running.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	if _, err := s.nonces.PurgeExpired(ctx); err != nil {
		s.log.Warn("nonce purge failed", "error", err)
	}
	return s.sessions.PurgeExpired(ctx)
}

// findOrCreate resolves a verified identity to its user row, inserting one
// on first contact. A concurrent first contact loses the insert to the
// unique index and falls back to the winner's row.
func (s *AuthService) findOrCreate(ctx context.Context, identity auth.Identity) (types.User, error) {
	user, err := s.lookup(ctx, identity)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	created, err := s.users.Create(ctx, newUserFromIdentity(identity))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Either a concurrent first contact won the insert, or a
			// different identity already owns one of our unique columns
			// (a Discord profile sharing an email user's address). The
			// re-lookup resolves the former; the latter stays a conflict.
			user, lookupErr := s.lookup(ctx, identity)
			if lookupErr == nil {
				return user, nil
			}
			if errors.Is(lookupErr, store.ErrNotFound) {
				return types.User{}, err
			}
			return types.User{}, lookupErr
		}
		return types.User{}, err
	}
	return created, nil
}

func (s *AuthService) lookup(ctx context.Context, identity auth.Identity) (types.User, error) {
	switch identity.Provider {
	case types.ProviderWallet:
		return s.users.GetByWallet(ctx, identity.Subject)
	case types.ProviderDiscord:
		return s.users.GetByDiscordID(ctx, identity.Subject)
	default:
		return s.users.GetByEmail(ctx, identity.Subject)
	}
}

func newUserFromIdentity(identity auth.Identity) types.User {
	user := types.User{AuthProvider: identity.Provider}
	switch identity.Provider {
	case types.ProviderWallet:
		user.WalletAddress = &identity.Subject
	case types.ProviderDiscord:
		user.DiscordID = &identity.Subject
	default:
		user.Email = &identity.Subject
	}
	if identity.Provider != types.ProviderEmail && identity.Email != "" {
		user.Email = &identity.Email
	}
	if identity.Username != "" {
		user.FullName = &identity.Username
	}
	if identity.AvatarURL != "" {
		user.AvatarURL = &identity.AvatarURL
	}
	return user
}

func (s *AuthService) mintSession(ctx context.Context, userID string) (string, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return "", err
	}
	_, err = s.sessions.Create(ctx, types.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(SessionDuration),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func parseWalletNonce(message string) (string, bool) {
	idx := strings.LastIndex(message, walletNonceMarker)
	if idx < 0 {
		return "", false
	}
	nonce := strings.TrimSpace(message[idx+len(walletNonceMarker):])
	return nonce, nonce != ""
}
