package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hudl-events/apiserver/internal/services"
)

// QuizHandler provides HTTP handlers for quiz management.
type QuizHandler struct {
	quizService   *services.QuizService
	exportService *services.ExportService
	log           *slog.Logger
}

func NewQuizHandler(quizService *services.QuizService, exportService *services.ExportService, log *slog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		exportService: exportService,
		log:           log,
	}
}

// QuizRouter registers quiz routes. Listing is public; everything that
// mutates is admin-gated.
func (h *QuizHandler) QuizRouter(r chi.Router, withUser func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.With(withUser, RequireAdmin).Post("/", h.Create)
	r.With(withUser, RequireAdmin).Put("/", h.Update)
	r.With(withUser, RequireAdmin).Delete("/", h.Delete)
	r.With(withUser, RequireAdmin).Post("/{quizID}/export", h.Export)
}

type QuizCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type QuizUpdateRequest struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	quizzes, err := h.quizService.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req QuizCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	quiz, err := h.quizService.Create(r.Context(), strings.TrimSpace(req.Title), req.Description, user.ID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": quiz})
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req QuizUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "quiz id is required")
		return
	}

	quiz, err := h.quizService.SetActive(r.Context(), req.ID, req.IsActive)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": quiz})
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "quiz id is required")
		return
	}

	if err := h.quizService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Export writes the quiz's ranked results to object storage as CSV.
func (h *QuizHandler) Export(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")

	bucket, key, err := h.exportService.Export(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"bucket": bucket, "key": key})
}
