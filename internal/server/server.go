package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hudl-events/apiserver/config"
	"github.com/hudl-events/apiserver/internal/auth"
	"github.com/hudl-events/apiserver/internal/db"
	"github.com/hudl-events/apiserver/internal/events"
	"github.com/hudl-events/apiserver/internal/handlers"
	"github.com/hudl-events/apiserver/internal/services"
	"github.com/hudl-events/apiserver/internal/storage"
	"github.com/hudl-events/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
	purgeStop  chan struct{}
	log        *slog.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	nonceRepo := store.NewNonceRepository(dbConn)
	quizRepo := store.NewQuizRepository(dbConn)
	questionRepo := store.NewQuestionRepository(dbConn)
	attemptRepo := store.NewAttemptRepository(dbConn)
	leaderboardRepo := store.NewLeaderboardRepository(dbConn)

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objectStore, err := newObjectStore(ctx, cfg)
	if err != nil {
		if publisher != nil {
			_ = publisher.Close()
		}
		_ = dbConn.Close()
		return nil, err
	}

	discordVerifier := auth.NewDiscordVerifier(cfg.Discord)
	authService := services.NewAuthService(userRepo, sessionRepo, nonceRepo, discordVerifier, log)
	quizService := services.NewQuizService(quizRepo)
	questionService := services.NewQuestionService(questionRepo)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo)
	exportService := services.NewExportService(quizRepo, leaderboardRepo, objectStore)

	var attemptPublisher services.AttemptPublisher
	if publisher != nil {
		attemptPublisher = publisher
	}
	attemptService := services.NewAttemptService(attemptRepo, attemptPublisher, log)

	secureCookies := cfg.Env == "production"
	authHandler := handlers.NewAuthHandler(authService, secureCookies, log)
	quizHandler := handlers.NewQuizHandler(quizService, exportService, log)
	questionHandler := handlers.NewQuestionHandler(questionService, log)
	attemptHandler := handlers.NewAttemptHandler(attemptService, log)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", authHandler.AuthRouter)
	router.Route("/quizzes", func(r chi.Router) {
		quizHandler.QuizRouter(r, authHandler.WithUser)
	})
	router.Route("/questions", func(r chi.Router) {
		questionHandler.QuestionRouter(r, authHandler.WithUser)
	})
	router.Route("/quiz-attempts", func(r chi.Router) {
		attemptHandler.AttemptRouter(r, authHandler.WithUser)
	})
	router.Route("/leaderboard", leaderboardHandler.LeaderboardRouter)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srv := &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
		log:        log,
	}

	if cfg.Sessions.PurgeInterval > 0 {
		srv.purgeStop = make(chan struct{})
		go srv.runPurge(authService, cfg.Sessions.PurgeInterval)
	}

	return srv, nil
}

// newPublisher builds the attempt-event publisher, or nil when no broker
// backend is configured.
func newPublisher(ctx context.Context, cfg config.Config) (*events.Publisher, error) {
	var backend events.Backend
	var err error

	switch cfg.MQ.Backend {
	case "rabbitmq":
		backend, err = events.NewRabbitMQBackend(cfg.MQ.RabbitMQ)
	case "pubsub":
		backend, err = events.NewPubSubBackend(ctx, cfg.MQ.PubSub)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
	if err != nil {
		return nil, err
	}
	return events.NewPublisher(backend, cfg.MQ.Channel), nil
}

// newObjectStore builds the export object store, or nil when exports are
// not configured.
func newObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	var objectStore storage.ObjectStore
	var err error

	switch cfg.Storage.Backend {
	case "minio":
		objectStore, err = storage.NewMinioStore(cfg.Storage.Minio)
	case "gcs":
		objectStore, err = storage.NewGCSStore(ctx, cfg.Storage.GCS)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return objectStore, nil
}

func (s *Server) runPurge(authService *services.AuthService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			purged, err := authService.PurgeExpired(ctx)
			cancel()
			if err != nil {
				s.log.Warn("session purge failed", "error", err)
			} else if purged > 0 {
				s.log.Info("purged expired sessions", "count", purged)
			}
		case <-s.purgeStop:
			return
		}
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.purgeStop != nil {
		close(s.purgeStop)
	}
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
