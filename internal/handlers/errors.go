package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hudl-events/apiserver/internal/auth"
	"github.com/hudl-events/apiserver/internal/services"
	"github.com/hudl-events/apiserver/internal/store"
)

// writeServiceError maps orchestrator and store errors onto HTTP statuses.
// Every kind except the internal fallback is safe to return verbatim; the
// fallback is logged in full and answered generically.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var upstream *auth.UpstreamError

	switch {
	case errors.Is(err, services.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, services.ErrStaleNonce):
		writeError(w, http.StatusUnauthorized, "stale or unknown nonce")
	case errors.Is(err, auth.ErrAuthorizationDenied):
		writeError(w, http.StatusUnauthorized, "authorization denied")
	case errors.Is(err, auth.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, "identity provider timed out")
	case errors.As(err, &upstream):
		log.Warn("upstream auth failure", "status", upstream.Status, "body", upstream.Body)
		writeError(w, http.StatusBadGateway, "identity provider error")
	case errors.Is(err, services.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, services.ErrExportsDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
