package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-quiz/internal/auth"
	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/service"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

type RouterDeps struct {
	Service        *service.Service
	Exams          exam.Store
	Blobs          storage.BlobStore // nil disables /assets
	Auth           *authmw.AuthService
	Admin          authmw.Admin
	EnableGuest    bool
	CORSOrigins    []string
	MaxUploadBytes int64
}

// NewRouter mounts the quiz API. Everything except login requires a
// bearer token; routes are then gated by RBAC permission.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Admin))
	r.Post("/auth/guest", auth.GuestLoginHandler(d.Auth, d.EnableGuest))

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		// Teacher: upload a document, export it
		pr.With(rbac.Require(rbac.PermExamCreate)).
			Post("/documents", UploadDocumentHandler(d.Service, d.MaxUploadBytes))
		pr.With(rbac.Require(rbac.PermExamExport)).
			Get("/exams/{examID}/export", ExportQTIHandler(d.Exams, d.Service))

		pr.With(rbac.Require(rbac.PermExamView)).
			Get("/exams", ListExamsHandler(d.Exams))
		pr.With(rbac.Require(rbac.PermExamView)).
			Get("/exams/{examID}", GetExamHandler(d.Exams))

		// Play
		pr.Route("/sessions", func(sr chi.Router) {
			sr.Use(rbac.Require(rbac.PermSessionPlay))
			sr.Post("/", StartSessionHandler(d.Service))
			sr.Get("/{sessionID}/question", CurrentQuestionHandler(d.Service))
			sr.Post("/{sessionID}/answers", SubmitAnswerHandler(d.Service))
			sr.Get("/{sessionID}/report", ReportHandler(d.Service))
		})

		pr.With(rbac.RequireAny(rbac.PermResultViewOwn, rbac.PermResultViewAll)).
			Get("/results", ListResultsHandler(d.Exams))

		if d.Blobs != nil {
			pr.Route("/assets", func(ar chi.Router) {
				ar.Use(rbac.Require(rbac.PermExamView))
				MountAssets(ar, d.Blobs)
			})
		}
	})
	return r
}
