package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hudl-events/apiserver/internal/services"
)

// LeaderboardHandler provides the public ranking read endpoints.
type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
	log                *slog.Logger
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService, log *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService, log: log}
}

// LeaderboardRouter registers leaderboard routes on the given router.
func (h *LeaderboardHandler) LeaderboardRouter(r chi.Router) {
	r.Get("/", h.ForQuiz)
	r.Get("/all", h.Overview)
}

func (h *LeaderboardHandler) ForQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quiz_id")
	if quizID == "" {
		writeError(w, http.StatusBadRequest, "quiz id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.leaderboardService.TopForQuiz(r.Context(), quizID, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (h *LeaderboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	allTime, quizLeaders, err := h.leaderboardService.Overview(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"allTimeLeaders": allTime,
		"quizLeaders":    quizLeaders,
	})
}
