package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/service"
)

var errForbidden = errors.New("forbidden")

// badRequest is a client error whose message is safe to echo.
type badRequest string

func (b badRequest) Error() string { return string(b) }

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorKind(err error) (string, int) {
	var br badRequest
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &br):
		return "bad_request", http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return "too_large", http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrParseFailure):
		return "parse_failure", http.StatusBadRequest
	case errors.Is(err, service.ErrNoQuestionsFound):
		return "no_questions_found", http.StatusUnprocessableEntity
	case errors.Is(err, quiz.ErrEmptyQuestionSet):
		return "empty_question_set", http.StatusPreconditionFailed
	case errors.Is(err, quiz.ErrStaleSubmission):
		return "stale_submission", http.StatusConflict
	case errors.Is(err, quiz.ErrUnknownSession):
		return "unknown_session", http.StatusNotFound
	case errors.Is(err, quiz.ErrSessionNotFinished):
		return "session_not_finished", http.StatusTooEarly
	case errors.Is(err, exam.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, errForbidden):
		return "forbidden", http.StatusForbidden
	}
	return "internal", http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, status := errorKind(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: kind, Message: msg})
}
