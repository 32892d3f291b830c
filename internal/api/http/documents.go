package http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/service"
)

type uploadResponse struct {
	ExamID      string             `json:"exam_id"`
	Title       string             `json:"title"`
	Questions   []extract.Question `json:"questions"`
	SkippedRows []string           `json:"skipped_key_rows,omitempty"`
}

// POST /documents (multipart: file, optional key as file or text, optional title)
func UploadDocumentHandler(svc *service.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			if r.ContentLength > maxBytes {
				writeError(w, r, &http.MaxBytesError{Limit: maxBytes})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, r, err)
				return
			}
			writeError(w, r, badRequest("multipart form required"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, badRequest("file required"))
			return
		}
		defer f.Close()

		tmpPath, err := spool(f, strings.ToLower(filepath.Ext(hdr.Filename)))
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer os.Remove(tmpPath)

		key, skipped, err := answerKeyFromForm(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		title := r.FormValue("title")
		if strings.TrimSpace(title) == "" {
			title = strings.TrimSuffix(filepath.Base(hdr.Filename), filepath.Ext(hdr.Filename))
		}
		e, err := svc.CreateExam(r.Context(), authmw.SubjectFromContext(r.Context()), title, tmpPath, key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, uploadResponse{
			ExamID:      e.ID,
			Title:       e.Title,
			Questions:   e.Questions,
			SkippedRows: skipped,
		})
	}
}

// spool copies the upload to a temp file keeping the extension, which
// selects the renderer.
func spool(r io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "quiz-upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), tmp.Close()
}

func answerKeyFromForm(r *http.Request) (extract.AnswerKey, []string, error) {
	var src io.Reader
	if kf, _, err := r.FormFile("key"); err == nil {
		defer kf.Close()
		src = kf
	} else if text := r.FormValue("key"); strings.TrimSpace(text) != "" {
		src = strings.NewReader(text)
	} else {
		return nil, nil, nil
	}
	key, rowErrs, err := extract.ParseAnswerKey(src)
	if err != nil {
		return nil, nil, badRequest("answer key: " + err.Error())
	}
	var skipped []string
	for _, re := range rowErrs {
		skipped = append(skipped, re.Error())
	}
	return key, skipped, nil
}

// examFor loads an exam, hiding answers from callers who cannot author.
func examFor(r *http.Request, store exam.Store, id string) (exam.Exam, error) {
	e, err := store.GetExam(r.Context(), id)
	if err != nil {
		return exam.Exam{}, err
	}
	if !canAuthor(r) {
		e = e.StudentView()
	}
	return e, nil
}
