package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hudl-events/apiserver/internal/services"
	"github.com/hudl-events/apiserver/types"
)

// QuestionHandler provides HTTP handlers for quiz questions.
type QuestionHandler struct {
	questionService *services.QuestionService
	log             *slog.Logger
}

func NewQuestionHandler(questionService *services.QuestionService, log *slog.Logger) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, log: log}
}

// QuestionRouter registers question routes. Reads are public; writes are
// admin-gated.
func (h *QuestionHandler) QuestionRouter(r chi.Router, withUser func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.With(withUser, RequireAdmin).Post("/", h.Create)
	r.With(withUser, RequireAdmin).Delete("/", h.Delete)
}

type QuestionCreateRequest struct {
	QuizID        string   `json:"quiz_id"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Points        int      `json:"points"`
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quiz_id")
	if quizID == "" {
		writeError(w, http.StatusBadRequest, "quiz id is required")
		return
	}

	questions, err := h.questionService.ListByQuiz(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req QuestionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	question, err := h.questionService.Create(r.Context(), types.Question{
		QuizID:        req.QuizID,
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": question})
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "question id is required")
		return
	}

	if err := h.questionService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
