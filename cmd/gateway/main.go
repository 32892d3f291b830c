package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/render"
	"github.com/mind-engage/mindengage-quiz/internal/service"
	storage "github.com/mind-engage/mindengage-quiz/internal/storage"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
	"github.com/mind-engage/mindengage-quiz/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, driver, cfg.DBDSN)
	cancel()
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()
	exams := exam.NewSQLStore(dbh)
	site, _ := os.Hostname()
	events := syncx.NewEventRepo(dbh, site)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Extraction ---
	policy, err := extract.PolicyByName(cfg.FallbackPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	var ocr render.OCR
	if cfg.EnableOCR {
		ocr = render.NewTesseractOCR(cfg.OCRLang)
	}
	pdf := render.NewPopplerRenderer(cfg.PdfToTextBin, cfg.PdfImagesBin, ocr)

	// --- Sessions ---
	// the expire hook needs the service and the service needs the store
	var svc *service.Service
	sessions := quiz.NewMemoryStore(
		quiz.WithIdleTimeout(cfg.SessionIdleTimeout),
		quiz.WithExpireHook(func(s *quiz.Session) { svc.SessionExpired(s) }),
	)
	svc = service.New(service.Deps{
		PDF:      pdf,
		Policy:   policy,
		Sessions: sessions,
		Exams:    exams,
		Blobs:    bs,
		Events:   events,
	})
	if cfg.SessionIdleTimeout > 0 {
		go sessions.Run(ctx, cfg.SessionSweepInterval)
	}

	// --- Telegram (optional) ---
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewFromToken(cfg.TelegramBotToken, svc, cfg.MaxUploadBytes)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		go bot.Run(ctx)
	}

	// --- HTTP ---
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.RouterDeps{
			Service:        svc,
			Exams:          exams,
			Blobs:          bs,
			Auth:           auth.NewAuthService(cfg.AuthHMACSecret),
			Admin:          auth.Admin{User: cfg.AdminUser, PassHash: cfg.AdminPassHash},
			EnableGuest:    cfg.EnableGuestAuth,
			CORSOrigins:    cfg.CORSOrigins,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Printf("listening on %s (db=%s, fallback=%s, telegram=%t)", cfg.HTTPAddr, driver, policy.Name(), cfg.TelegramBotToken != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
