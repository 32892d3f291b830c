package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/service"
)

// POST /sessions {exam_id}
func StartSessionHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, badRequest("bad json"))
			return
		}
		if strings.TrimSpace(req.ExamID) == "" {
			writeError(w, r, badRequest("exam_id required"))
			return
		}
		p, err := svc.StartExam(r.Context(), authmw.SubjectFromContext(r.Context()), req.ExamID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// ownedSession resolves {sessionID} and checks it belongs to the caller.
// Someone else's session is reported as unknown.
func ownedSession(w http.ResponseWriter, r *http.Request, svc *service.Service) (string, bool) {
	id := chi.URLParam(r, "sessionID")
	owner, err := svc.SessionOwner(r.Context(), id)
	if err == nil && owner != authmw.SubjectFromContext(r.Context()) {
		err = quiz.ErrUnknownSession
	}
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	return id, true
}

// GET /sessions/{sessionID}/question
func CurrentQuestionHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ownedSession(w, r, svc)
		if !ok {
			return
		}
		p, done, err := svc.Current(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if done {
			writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "report_ready": true})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// POST /sessions/{sessionID}/answers {ordinal, choice} or {ordinal, option_index}
func SubmitAnswerHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ownedSession(w, r, svc)
		if !ok {
			return
		}
		var req struct {
			Ordinal     int    `json:"ordinal"`
			Choice      string `json:"choice"`
			OptionIndex *int   `json:"option_index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, badRequest("bad json"))
			return
		}
		if req.Ordinal < 1 {
			writeError(w, r, badRequest("ordinal required"))
			return
		}
		choice := req.Choice
		if req.OptionIndex != nil {
			text, err := svc.OptionText(r.Context(), id, req.Ordinal, *req.OptionIndex)
			if err != nil {
				if !errors.Is(err, quiz.ErrStaleSubmission) {
					err = badRequest(err.Error())
				}
				writeError(w, r, err)
				return
			}
			choice = text
		}
		out, err := svc.SubmitAnswer(r.Context(), id, req.Ordinal, choice)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /sessions/{sessionID}/report[?format=csv]
// The session is closed once the report is handed out.
func ReportHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ownedSession(w, r, svc)
		if !ok {
			return
		}
		format := strings.ToLower(r.URL.Query().Get("format"))
		if format != "" && format != "json" && format != "csv" {
			writeError(w, r, badRequest("unsupported report format "+format))
			return
		}
		rep, err := svc.Report(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if format == "csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", "attachment; filename=\"report-"+id+".csv\"")
			_ = quiz.WriteCSV(w, rep)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}
