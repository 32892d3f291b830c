package http

import (
	"net/http"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// GET /results?exam_id=&all=1&limit=&offset=
func ListResultsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := exam.ResultListOpts{
			UserID: authmw.SubjectFromContext(r.Context()),
			ExamID: q.Get("exam_id"),
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		}
		if q.Get("all") == "1" {
			if !rbac.Can(r.Context(), rbac.PermResultViewAll) {
				writeError(w, r, errForbidden)
				return
			}
			opts.UserID = q.Get("user_id")
		}
		list, err := store.ListResults(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if list == nil {
			list = []exam.Result{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
