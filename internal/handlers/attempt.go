package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hudl-events/apiserver/internal/services"
	"github.com/hudl-events/apiserver/types"
)

// AttemptHandler provides HTTP handlers for quiz attempts. Both routes
// act on the authenticated user only.
type AttemptHandler struct {
	attemptService *services.AttemptService
	log            *slog.Logger
}

func NewAttemptHandler(attemptService *services.AttemptService, log *slog.Logger) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, log: log}
}

// AttemptRouter registers attempt routes on the given router.
func (h *AttemptHandler) AttemptRouter(r chi.Router, withUser func(http.Handler) http.Handler) {
	r.With(withUser, RequireUser).Get("/", h.List)
	r.With(withUser, RequireUser).Post("/", h.Record)
}

type AttemptRequest struct {
	QuizID      string         `json:"quiz_id"`
	Answers     map[string]int `json:"answers"`
	Score       int            `json:"score"`
	TotalPoints int            `json:"total_points"`
}

func (h *AttemptHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	attempts, err := h.attemptService.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func (h *AttemptHandler) Record(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	attempt, err := h.attemptService.Record(r.Context(), types.Attempt{
		QuizID:      req.QuizID,
		UserID:      user.ID,
		Answers:     req.Answers,
		Score:       req.Score,
		TotalPoints: req.TotalPoints,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempt": attempt})
}
