package http

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/qti/export"
	"github.com/mind-engage/mindengage-quiz/internal/service"
)

// GET /exams/{examID}/export?format=qti
func ExportQTIHandler(store exam.Store, svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		if f := strings.ToLower(r.URL.Query().Get("format")); f != "" && f != "qti" {
			writeError(w, r, badRequest("unsupported export format "+f))
			return
		}

		ex, err := store.GetExam(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		pkg, err := export.BuildPackage(ex, svc.OpenBlob)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", "attachment; filename=\""+id+".zip\"")
		http.ServeContent(w, r, id+".zip", time.Unix(ex.CreatedAt, 0), bytes.NewReader(pkg))
	}
}
