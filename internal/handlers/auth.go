package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hudl-events/apiserver/internal/services"
	"github.com/hudl-events/apiserver/types"
)

// SessionCookieName is the cookie that carries the opaque session token.
const SessionCookieName = "hudl_session"

const adminApprovalMessage = "Account created successfully! Admin access requires approval from an existing administrator."

// AuthHandler provides the authentication endpoints and session middleware.
type AuthHandler struct {
	authService   *services.AuthService
	secureCookies bool
	log           *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
// secureCookies should be true in production so the session cookie is only
// sent over HTTPS.
func NewAuthHandler(authService *services.AuthService, secureCookies bool, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		log:           log,
	}
}

// AuthRouter registers auth routes on the given router.
func (h *AuthHandler) AuthRouter(r chi.Router) {
	r.Post("/email/signup", h.SignUp)
	r.Post("/email/signin", h.SignIn)
	r.Get("/discord/url", h.DiscordURL)
	r.Post("/discord", h.Discord)
	r.Post("/wallet/nonce", h.WalletNonce)
	r.Post("/wallet", h.Wallet)
	r.With(h.WithUser, RequireUser).Get("/me", h.Me)
	r.Post("/logout", h.Logout)
}

// WithUser resolves the session cookie and, when it maps to a live
// session, injects the user into the request context. The request always
// proceeds; gating is RequireUser's job.
func (h *AuthHandler) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token != "" {
			if user, err := h.authService.CurrentUser(r.Context(), token); err == nil {
				r = r.WithContext(withUser(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests whose context carries no authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects non-admin users. Must run after WithUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DiscordRequest struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type WalletRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

type AuthResponse struct {
	User    types.User `json:"user"`
	Message string     `json:"message,omitempty"`
}

// SignUp registers a new email identity. A client-supplied admin flag is
// acknowledged with a deferred-approval message but never honored; the
// created user is always a regular user.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.authService.SignUpEmail(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.setSessionCookie(w, token)

	resp := AuthResponse{User: user}
	if req.IsAdmin {
		resp.Message = adminApprovalMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// SignIn verifies an email/password pair and mints a session.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.authService.SignInEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// DiscordURL returns the provider authorization URL to redirect to.
func (h *AuthHandler) DiscordURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": h.authService.DiscordAuthURL()})
}

// Discord completes the OAuth callback with the authorization code.
func (h *AuthHandler) Discord(w http.ResponseWriter, r *http.Request) {
	var req DiscordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.authService.SignInDiscord(r.Context(), req.Code, req.Error)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// WalletNonce mints a single-use nonce for the wallet sign-in message.
func (h *AuthHandler) WalletNonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.authService.IssueWalletNonce(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"nonce": nonce})
}

// Wallet signs a wallet in with a signed nonce message.
func (h *AuthHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	var req WalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.authService.SignInWallet(r.Context(), req.WalletAddress, req.Signature, req.Message)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// Logout revokes the current session, if any, and clears the cookie
// regardless of whether one existed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.authService.SignOut(r.Context(), token); err != nil {
			writeServiceError(w, h.log, err)
			return
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionDuration / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}
