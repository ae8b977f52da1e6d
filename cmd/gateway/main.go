package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/quizbotio/quizbot/internal/api/http"
	auth "github.com/quizbotio/quizbot/internal/auth/middleware"
	"github.com/quizbotio/quizbot/internal/botstate"
	"github.com/quizbotio/quizbot/internal/config"
	"github.com/quizbotio/quizbot/internal/db"
	"github.com/quizbotio/quizbot/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	svc := quiz.NewService(quiz.NewSQLStore(dbh, cfg.DBDriver))
	states := botstate.NewSQLStore(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.AdminAPIKey, cfg.AdminUser, cfg.AdminPassHash)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	// Public quiz flow, driven by the bot on behalf of its users.
	r.Route("/public", func(pr chi.Router) {
		pr.Post("/users/register", api.RegisterUserHandler(svc))
		pr.Get("/users/{telegramID}/stats", api.UserStatsHandler(svc))
		pr.Get("/tests", api.ListTestsHandler(svc))
		pr.Post("/sessions/start", api.StartSessionHandler(svc, cfg.ShuffleQuestions))
		pr.Get("/sessions/{sessionID}/next", api.NextQuestionHandler(svc))
		pr.Post("/sessions/{sessionID}/answer", api.SubmitAnswerHandler(svc))
		pr.Post("/sessions/{sessionID}/finish", api.FinishSessionHandler(svc))
		pr.Get("/sessions/{sessionID}", api.SessionInfoHandler(svc))
	})

	// Admin surface, gated by the static credential.
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin(authSvc))
		ar.Route("/admin", func(sr chi.Router) {
			sr.Post("/tests", api.CreateTestHandler(svc))
			sr.Post("/tests/{testID}/questions/import", api.ImportQuestionsHandler(svc))
			sr.Post("/questions/import", api.ImportQuestionsHandler(svc)) // legacy: default test
			sr.Get("/questions", api.ListQuestionsHandler(svc))
			sr.Delete("/questions/clear", api.ClearQuestionsHandler(svc))
			sr.Get("/stats", api.AdminStatsHandler(svc))
		})
		ar.Route("/bot/state", func(sr chi.Router) {
			sr.Get("/{telegramID}", api.GetBotStateHandler(states))
			sr.Put("/{telegramID}", api.PutBotStateHandler(states))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
