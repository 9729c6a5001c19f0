package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hudl-events/apiserver/config"
	"github.com/hudl-events/apiserver/types"
)

const (
	discordAuthorizeURL = "https://discord.com/api/oauth2/authorize"
	discordTokenURL     = "https://discord.com/api/oauth2/token"
	discordUserURL      = "https://discord.com/api/users/@me"
	discordCDNBase      = "https://cdn.discordapp.com"

	discordScope   = "identify email"
	discordTimeout = 10 * time.Second
)

// DiscordVerifier performs the two-step OAuth2 authorization-code
// exchange against Discord and reads the current-user profile.
type DiscordVerifier struct {
	clientID     string
	clientSecret string
	redirectURI  string
	client       *http.Client

	// Endpoint overrides for tests.
	tokenURL string
	userURL  string
}

func NewDiscordVerifier(cfg config.DiscordConfig) *DiscordVerifier {
	return &DiscordVerifier{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		client:       &http.Client{Timeout: discordTimeout},
		tokenURL:     discordTokenURL,
		userURL:      discordUserURL,
	}
}

// AuthorizationURL builds the provider authorization URL. Pure function of
// configuration; prompt=consent forces a fresh consent screen so stale
// grants are not silently reused.
func (v *DiscordVerifier) AuthorizationURL() string {
	params := url.Values{}
	params.Set("client_id", v.clientID)
	params.Set("redirect_uri", v.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", discordScope)
	params.Set("prompt", "consent")
	return discordAuthorizeURL + "?" + params.Encode()
}

func (v *DiscordVerifier) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	discordCreds, ok := creds.(DiscordCredentials)
	if !ok || strings.TrimSpace(discordCreds.Code) == "" {
		return Identity{}, ErrAuthorizationDenied
	}

	token, err := v.exchangeCode(ctx, discordCreds.Code)
	if err != nil {
		return Identity{}, err
	}
	if token.AccessToken == "" {
		return Identity{}, &UpstreamError{Status: http.StatusOK, Body: "no access token in response"}
	}

	profile, err := v.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{
		Provider: types.ProviderDiscord,
		Subject:  profile.ID,
		Email:    NormalizeEmail(profile.Email),
		Username: profile.Username,
	}
	if profile.Avatar != "" {
		identity.AvatarURL = fmt.Sprintf("%s/avatars/%s/%s.png", discordCDNBase, profile.ID, profile.Avatar)
	}
	return identity, nil
}

type discordToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

func (v *DiscordVerifier) exchangeCode(ctx context.Context, code string) (discordToken, error) {
	form := url.Values{}
	form.Set("client_id", v.clientID)
	form.Set("client_secret", v.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", v.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return discordToken{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token discordToken
	if err := v.do(req, &token); err != nil {
		return discordToken{}, err
	}
	return token, nil
}

type discordProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

func (v *DiscordVerifier) fetchProfile(ctx context.Context, accessToken string) (discordProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userURL, nil)
	if err != nil {
		return discordProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var profile discordProfile
	if err := v.do(req, &profile); err != nil {
		return discordProfile{}, err
	}
	return profile, nil
}

// do executes a provider request, surfacing timeouts as ErrUpstreamTimeout
// and non-2xx responses as *UpstreamError with the upstream body attached.
func (v *DiscordVerifier) do(req *http.Request, out any) error {
	resp, err := v.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrUpstreamTimeout
		}
		return &UpstreamError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &UpstreamError{Status: resp.StatusCode, Body: "unreadable response body"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Status: resp.StatusCode, Body: "malformed provider response"}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
