package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/progression"
	"github.com/p-n-ai/pai-quest/internal/quiz"
	"github.com/p-n-ai/pai-quest/internal/session"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Rejections that leave the session unchanged answer 409 so the client can
// show guidance instead of a failure.
var conflicts = []struct {
	err  error
	code string
}{
	{progression.ErrSectionNotComplete, "section_not_complete"},
	{quiz.ErrIncomplete, "quiz_incomplete"},
	{quiz.ErrAnswersLocked, "answers_locked"},
	{quiz.ErrNotSubmitted, "quiz_not_submitted"},
	{quiz.ErrNotRevealed, "quiz_not_revealed"},
	{session.ErrNoActiveQuiz, "no_active_quiz"},
}

func classify(err error) (status int, code string) {
	var ce *quiz.ContractError
	switch {
	case errors.As(err, &ce):
		return http.StatusUnprocessableEntity, "invalid_answer"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, curriculum.ErrModuleNotFound):
		return http.StatusNotFound, "module_not_found"
	case errors.Is(err, session.ErrLearnerRequired):
		return http.StatusBadRequest, "learner_required"
	}
	for _, c := range conflicts {
		if errors.Is(err, c.err) {
			return http.StatusConflict, c.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "bad_request", Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
