package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hudl-events/apiserver/config"
	"github.com/hudl-events/apiserver/types"
)

func newTestVerifier(tokenURL, userURL string) *DiscordVerifier {
	v := NewDiscordVerifier(config.DiscordConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/callback",
	})
	v.tokenURL = tokenURL
	v.userURL = userURL
	return v
}

func TestDiscordAuthorizationURL(t *testing.T) {
	v := newTestVerifier("", "")

	parsed, err := url.Parse(v.AuthorizationURL())
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := parsed.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
	if q.Get("scope") != "identify email" {
		t.Errorf("scope = %q", q.Get("scope"))
	}
	if q.Get("prompt") != "consent" {
		t.Errorf("prompt = %q", q.Get("prompt"))
	}
}

func TestDiscordVerify(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "auth-code" {
			t.Errorf("code = %q", r.PostForm.Get("code"))
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok"})
	}))
	defer tokenSrv.Close()

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "123456",
			"username": "alice",
			"email":    "Alice@Example.com",
			"avatar":   "abcdef",
		})
	}))
	defer userSrv.Close()

	v := newTestVerifier(tokenSrv.URL, userSrv.URL)
	identity, err := v.Verify(context.Background(), DiscordCredentials{Code: "auth-code"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Provider != types.ProviderDiscord || identity.Subject != "123456" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Email != "alice@example.com" {
		t.Errorf("email = %q", identity.Email)
	}
	if identity.AvatarURL != "https://cdn.discordapp.com/avatars/123456/abcdef.png" {
		t.Errorf("avatar url = %q", identity.AvatarURL)
	}
}

func TestDiscordVerifyExchangeRejected(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	v := newTestVerifier(tokenSrv.URL, "")
	_, err := v.Verify(context.Background(), DiscordCredentials{Code: "expired-code"})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("want *UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Errorf("status = %d", upstream.Status)
	}
	if !strings.Contains(upstream.Body, "invalid_grant") {
		t.Errorf("body = %q", upstream.Body)
	}
}

func TestDiscordVerifyEmptyCode(t *testing.T) {
	v := newTestVerifier("", "")
	_, err := v.Verify(context.Background(), DiscordCredentials{Code: "  "})
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("want ErrAuthorizationDenied, got %v", err)
	}
}

func TestDiscordVerifyMissingAccessToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token_type": "Bearer"})
	}))
	defer tokenSrv.Close()

	v := newTestVerifier(tokenSrv.URL, "")
	_, err := v.Verify(context.Background(), DiscordCredentials{Code: "auth-code"})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("want *UpstreamError, got %v", err)
	}
}
