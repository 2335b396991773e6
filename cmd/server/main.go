package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/flightprep/quizbank/internal/api/http"
	"github.com/flightprep/quizbank/internal/auth"
	"github.com/flightprep/quizbank/internal/config"
	"github.com/flightprep/quizbank/internal/db"
	"github.com/flightprep/quizbank/internal/eventlog"
	"github.com/flightprep/quizbank/internal/question"
	"github.com/flightprep/quizbank/internal/session"
	"github.com/flightprep/quizbank/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := question.NewSQLStore(dbh, cfg.DBDriver)
	events := eventlog.NewRepo(dbh)

	// --- Sessions ---
	sessions := session.NewManager(store, session.Options{
		ExamSize:  cfg.ExamSize,
		PassScore: cfg.ExamPassScore,
	})

	// --- Blobs ---
	var blobs storage.BlobStore
	switch cfg.BlobDriver {
	case "supabase":
		blobs = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	default:
		fs, err := storage.NewFSStore(cfg.BlobBasePath, cfg.PublicURL)
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		blobs = fs
	}

	// --- Access gate ---
	gate := auth.NewGate(cfg.AuthHMACSecret, cfg.AccessCodeHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/access", gate.AccessHandler())

	r.Group(func(pr chi.Router) {
		pr.Use(gate.Middleware())

		pr.Route("/questions", func(qr chi.Router) {
			qr.Get("/", api.ListQuestionsHandler(store))
			qr.Post("/", api.CreateQuestionHandler(store, events))
			qr.Post("/reorder", api.ReorderHandler(store, events))
			qr.Get("/{questionID}", api.GetQuestionHandler(store))
			qr.Put("/{questionID}", api.UpdateQuestionHandler(store))
			qr.Delete("/{questionID}", api.DeleteQuestionHandler(store, events))
			qr.Post("/{questionID}/star", api.ToggleStarHandler(store))
		})
		pr.Get("/topics", api.TopicsHandler(store))

		pr.Post("/import/paste", api.ImportPasteHandler(store, events))
		pr.Post("/import/files", api.ImportFilesHandler(store, events))
		pr.Post("/import/backup", api.ImportBackupHandler(store, events))
		pr.Get("/export", api.ExportHandler(store))

		pr.Route("/sessions", func(sr chi.Router) {
			sr.Post("/", api.StartSessionHandler(sessions))
			sr.Get("/{sessionID}", api.GetSessionHandler(sessions))
			sr.Delete("/{sessionID}", api.EndSessionHandler(sessions))
			sr.Post("/{sessionID}/answers", api.AnswerHandler(sessions))
			sr.Post("/{sessionID}/next", api.NextHandler(sessions))
			sr.Post("/{sessionID}/previous", api.PreviousHandler(sessions))
			sr.Post("/{sessionID}/submit", api.SubmitHandler(sessions))
			sr.Post("/{sessionID}/retry", api.RetryHandler(sessions))
		})

		pr.Post("/assets", api.UploadAssetHandler(blobs))
	})

	// Image URLs are embedded in <img> tags, which cannot carry a bearer
	// header, so reads stay outside the gate.
	r.Get("/assets/*", api.ServeAssetHandler(blobs))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, blobs=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.BlobDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
