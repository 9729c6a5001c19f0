package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hudl-events/apiserver/internal/auth"
	"github.com/hudl-events/apiserver/internal/store"
	"github.com/hudl-events/apiserver/types"
)

// fakeUserStore is an in-memory UserStore enforcing the same uniqueness
// rules as the real schema.
type fakeUserStore struct {
	users  map[string]types.User
	hashes map[string]string
	nextID int

	createConflict bool // force ErrConflict on the next insert
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]types.User{}, hashes: map[string]string{}}
}

func (f *fakeUserStore) insert(user types.User) (types.User, error) {
	for _, existing := range f.users {
		if user.Email != nil && existing.Email != nil && *user.Email == *existing.Email {
			return types.User{}, store.ErrConflict
		}
		if user.WalletAddress != nil && existing.WalletAddress != nil && *user.WalletAddress == *existing.WalletAddress {
			return types.User{}, store.ErrConflict
		}
		if user.DiscordID != nil && existing.DiscordID != nil && *user.DiscordID == *existing.DiscordID {
			return types.User{}, store.ErrConflict
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("u%d", f.nextID)
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) Create(ctx context.Context, user types.User) (types.User, error) {
	if f.createConflict {
		f.createConflict = false
		return types.User{}, store.ErrConflict
	}
	return f.insert(user)
}

func (f *fakeUserStore) CreateWithPassword(ctx context.Context, user types.User, passwordHash string) (types.User, error) {
	if f.createConflict {
		f.createConflict = false
		return types.User{}, store.ErrConflict
	}
	created, err := f.insert(user)
	if err != nil {
		return types.User{}, err
	}
	f.hashes[created.ID] = passwordHash
	hash := passwordHash
	created.PasswordHash = &hash
	f.users[created.ID] = created
	return created, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (types.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserStore) find(match func(types.User) bool) (types.User, error) {
	for _, user := range f.users {
		if match(user) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return f.find(func(u types.User) bool { return u.Email != nil && *u.Email == email })
}

func (f *fakeUserStore) GetByWallet(ctx context.Context, address string) (types.User, error) {
	return f.find(func(u types.User) bool { return u.WalletAddress != nil && *u.WalletAddress == address })
}

func (f *fakeUserStore) GetByDiscordID(ctx context.Context, discordID string) (types.User, error) {
	return f.find(func(u types.User) bool { return u.DiscordID != nil && *u.DiscordID == discordID })
}

func (f *fakeUserStore) PromoteToAdmin(ctx context.Context, id string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsAdmin = true
	f.users[id] = user
	return nil
}

type fakeSessionStore struct {
	users    *fakeUserStore
	sessions map[string]types.Session
}

func newFakeSessionStore(users *fakeUserStore) *fakeSessionStore {
	return &fakeSessionStore{users: users, sessions: map[string]types.Session{}}
}

func (f *fakeSessionStore) Create(ctx context.Context, session types.Session) (types.Session, error) {
	if _, ok := f.users.users[session.UserID]; !ok {
		return types.Session{}, store.ErrNotFound
	}
	session.ID = fmt.Sprintf("s%d", len(f.sessions)+1)
	session.CreatedAt = time.Now()
	f.sessions[session.Token] = session
	return session, nil
}

func (f *fakeSessionStore) ResolveUser(ctx context.Context, token string) (types.User, error) {
	session, ok := f.sessions[token]
	if !ok || !session.ExpiresAt.After(time.Now()) {
		return types.User{}, store.ErrNotFound
	}
	return f.users.GetByID(ctx, session.UserID)
}

func (f *fakeSessionStore) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	var purged int64
	for token, session := range f.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(f.sessions, token)
			purged++
		}
	}
	return purged, nil
}

type fakeNonceStore struct {
	nonces map[string]time.Time
}

func newFakeNonceStore() *fakeNonceStore {
	return &fakeNonceStore{nonces: map[string]time.Time{}}
}

func (f *fakeNonceStore) Create(ctx context.Context, nonce string, expiresAt time.Time) error {
	f.nonces[nonce] = expiresAt
	return nil
}

func (f *fakeNonceStore) Consume(ctx context.Context, nonce string) error {
	expiresAt, ok := f.nonces[nonce]
	if !ok || !expiresAt.After(time.Now()) {
		return store.ErrNotFound
	}
	delete(f.nonces, nonce)
	return nil
}

func (f *fakeNonceStore) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// fakeDiscord records whether Verify was reached.
type fakeDiscord struct {
	identity auth.Identity
	err      error
	called   bool
}

func (f *fakeDiscord) Verify(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	f.called = true
	if f.err != nil {
		return auth.Identity{}, f.err
	}
	return f.identity, nil
}

func (f *fakeDiscord) AuthorizationURL() string {
	return "https://discord.example/authorize"
}

type authFixture struct {
	service  *AuthService
	users    *fakeUserStore
	sessions *fakeSessionStore
	nonces   *fakeNonceStore
	discord  *fakeDiscord
}

func newAuthFixture() *authFixture {
	users := newFakeUserStore()
	sessions := newFakeSessionStore(users)
	nonces := newFakeNonceStore()
	discord := &fakeDiscord{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &authFixture{
		service:  NewAuthService(users, sessions, nonces, discord, log),
		users:    users,
		sessions: sessions,
		nonces:   nonces,
		discord:  discord,
	}
}

func TestSignUpEmailRoundtrip(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	user, token, err := fx.service.SignUpEmail(ctx, "  Alice@Example.COM ", "hunter2", "Alice")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.Email == nil || *user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %+v", user)
	}
	if user.IsAdmin {
		t.Fatal("self-service sign-up must not grant admin")
	}
	if token == "" {
		t.Fatal("no session token minted")
	}

	current, err := fx.service.CurrentUser(ctx, token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.ID != user.ID {
		t.Fatalf("session resolves to %s, want %s", current.ID, user.ID)
	}
}

func TestSignUpEmailDuplicate(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if _, _, err := fx.service.SignUpEmail(ctx, "alice@example.com", "hunter2", "Alice"); err != nil {
		t.Fatalf("first sign up: %v", err)
	}
	_, _, err := fx.service.SignUpEmail(ctx, "Alice@example.com", "other", "Alice Again")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestSignUpEmailInsertRace(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	// The pre-check sees no user, but the insert loses to a concurrent
	// sign-up and hits the unique index.
	fx.users.createConflict = true
	_, _, err := fx.service.SignUpEmail(ctx, "alice@example.com", "hunter2", "Alice")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestSignInEmail(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	user, _, err := fx.service.SignUpEmail(ctx, "alice@example.com", "hunter2", "Alice")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	signedIn, token, err := fx.service.SignInEmail(ctx, "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signedIn.ID != user.ID || token == "" {
		t.Fatalf("unexpected sign in result: %+v / %q", signedIn, token)
	}

	_, _, err = fx.service.SignInEmail(ctx, "alice@example.com", "wrong")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	_, _, err = fx.service.SignInEmail(ctx, "nobody@example.com", "hunter2")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInDiscordDeniedShortCircuits(t *testing.T) {
	fx := newAuthFixture()

	_, _, err := fx.service.SignInDiscord(context.Background(), "some-code", "access_denied")
	if !errors.Is(err, auth.ErrAuthorizationDenied) {
		t.Fatalf("want ErrAuthorizationDenied, got %v", err)
	}
	if fx.discord.called {
		t.Fatal("denied callback must not reach the provider")
	}

	_, _, err = fx.service.SignInDiscord(context.Background(), "  ", "")
	if !errors.Is(err, auth.ErrAuthorizationDenied) {
		t.Fatalf("want ErrAuthorizationDenied, got %v", err)
	}
	if fx.discord.called {
		t.Fatal("empty code must not reach the provider")
	}
}

func TestSignInDiscordFirstContactCreatesUser(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()
	fx.discord.identity = auth.Identity{
		Provider:  types.ProviderDiscord,
		Subject:   "123456",
		Email:     "alice@example.com",
		Username:  "alice",
		AvatarURL: "https://cdn.discordapp.com/avatars/123456/abc.png",
	}

	user, token, err := fx.service.SignInDiscord(ctx, "auth-code", "")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.DiscordID == nil || *user.DiscordID != "123456" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatal("no session minted")
	}

	// Second sign-in resolves the same row.
	again, _, err := fx.service.SignInDiscord(ctx, "auth-code-2", "")
	if err != nil {
		t.Fatalf("second sign in: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("second sign in created a new user: %s vs %s", again.ID, user.ID)
	}
	if len(fx.users.users) != 1 {
		t.Fatalf("want 1 user, have %d", len(fx.users.users))
	}
}

func signWalletMessage(t *testing.T, message string) (address, signature string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestSignInWallet(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	nonce, err := fx.service.IssueWalletNonce(ctx)
	if err != nil {
		t.Fatalf("issue nonce: %v", err)
	}
	message := WalletSignInMessage(nonce)
	if !strings.Contains(message, nonce) {
		t.Fatalf("message %q does not carry the nonce", message)
	}
	address, signature := signWalletMessage(t, message)

	user, token, err := fx.service.SignInWallet(ctx, address, signature, message)
	if err != nil {
		t.Fatalf("wallet sign in: %v", err)
	}
	if user.WalletAddress == nil || *user.WalletAddress != address {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatal("no session minted")
	}

	// The nonce is single-use; replaying the same signed message fails.
	_, _, err = fx.service.SignInWallet(ctx, address, signature, message)
	if !errors.Is(err, ErrStaleNonce) {
		t.Fatalf("want ErrStaleNonce on replay, got %v", err)
	}
}

func TestSignInWalletBadSignatureLeavesNonceFresh(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	nonce, err := fx.service.IssueWalletNonce(ctx)
	if err != nil {
		t.Fatalf("issue nonce: %v", err)
	}
	message := WalletSignInMessage(nonce)
	address, _ := signWalletMessage(t, message)
	_, forged := signWalletMessage(t, "something else")

	_, _, err = fx.service.SignInWallet(ctx, address, forged, message)
	if !errors.Is(err, auth.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
	if len(fx.users.users) != 0 {
		t.Fatal("failed verification must not create a user")
	}

	// A valid signature can still use the nonce afterwards.
	address, signature := signWalletMessage(t, message)
	if _, _, err := fx.service.SignInWallet(ctx, address, signature, message); err != nil {
		t.Fatalf("valid sign in after failed attempt: %v", err)
	}
}

func TestSignInWalletMessageWithoutNonce(t *testing.T) {
	fx := newAuthFixture()

	address, signature := signWalletMessage(t, "free-form message")
	_, _, err := fx.service.SignInWallet(context.Background(), address, signature, "free-form message")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("want ErrBadRequest, got %v", err)
	}
}

func TestCurrentUserExpiredSession(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	user, err := fx.users.Create(ctx, types.User{AuthProvider: types.ProviderEmail})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := fx.sessions.Create(ctx, types.Session{
		UserID:    user.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	_, err = fx.service.CurrentUser(ctx, "expired-token")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
}

func TestSignOutIdempotent(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, token, err := fx.service.SignUpEmail(ctx, "alice@example.com", "hunter2", "Alice")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := fx.service.SignOut(ctx, token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := fx.service.CurrentUser(ctx, token); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated after sign out, got %v", err)
	}
	if err := fx.service.SignOut(ctx, token); err != nil {
		t.Fatalf("second sign out must be a no-op, got %v", err)
	}
	if err := fx.service.SignOut(ctx, ""); err != nil {
		t.Fatalf("empty token sign out must be a no-op, got %v", err)
	}
}

func TestPromoteToAdmin(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	user, _, err := fx.service.SignUpEmail(ctx, "alice@example.com", "hunter2", "Alice")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := fx.service.PromoteToAdmin(ctx, "Alice@Example.com"); err != nil {
		t.Fatalf("promote: %v", err)
	}
	promoted, err := fx.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !promoted.IsAdmin {
		t.Fatal("user not promoted")
	}

	if err := fx.service.PromoteToAdmin(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
