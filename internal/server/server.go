package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/vrtmanagement/feedback-system/internal/config"
	"github.com/vrtmanagement/feedback-system/internal/infrastructure/blob"
	mongodoc "github.com/vrtmanagement/feedback-system/internal/infrastructure/mongo"
	commonhttp "github.com/vrtmanagement/feedback-system/internal/interfaces/http/common"
	publichttp "github.com/vrtmanagement/feedback-system/internal/interfaces/http/public"
	"github.com/vrtmanagement/feedback-system/internal/mail"
	"github.com/vrtmanagement/feedback-system/internal/survey/application"
)

// Server is the composition root: it builds the repository, services, mailer
// and dispatch queue, wires them into the HTTP handlers, and owns startup and
// graceful shutdown.
type Server struct {
	logger         *zap.Logger
	client         *mongo.Client
	repo           *mongodoc.SurveyRepository
	queue          *mail.Queue
	publicHandler  *publichttp.Handler
	blobStore      *blob.LocalStore
	addr           string
	allowedOrigins []string
}

// New assembles the application from config and a connected Mongo client.
func New(cfg config.Config, client *mongo.Client, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	database := client.Database(cfg.MongoDatabase)
	repo := mongodoc.NewSurveyRepository(database, cfg.SurveyCollection)

	blobStore, err := blob.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	mailer := mail.NewMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
	}, logger)

	queue := mail.NewQueue(mailer, repo, logger, cfg.EmailQueueSize, cfg.EmailWorkers)

	lifecycle := application.NewLifecycleService(repo, blobStore, queue, logger, cfg.LegacyValidation)
	queries := application.NewQueryService(repo)
	emailBatch := application.NewEmailBatchService(repo, mailer, logger, cfg.EmailGrace, cfg.EmailBatchLimit)

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:     logger,
		Lifecycle:  lifecycle,
		Queries:    queries,
		EmailBatch: emailBatch,
		Blobs:      blobStore,
		CronSecret: cfg.CronSecret,
	})

	return &Server{
		logger:         logger,
		client:         client,
		repo:           repo,
		queue:          queue,
		publicHandler:  publicHandler,
		blobStore:      blobStore,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}, nil
}

// Run ensures indexes, mounts the routes and serves until a signal or a
// listener error; it then drains the dispatch queue before disconnecting.
func (s *Server) Run() error {
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.EnsureIndexes(indexCtx); err != nil {
		s.logger.Warn("failed to ensure survey indexes", zap.Error(err))
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	s.publicHandler.Register(router)

	fileServer := http.FileServer(http.Dir(s.blobStore.Dir()))
	router.Handle("/media/*", http.StripPrefix("/media/", fileServer))

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	return s.waitForShutdown(httpServer, errChan)
}

// waitForShutdown watches the listener and OS signals. Shutdown order
// matters: stop accepting requests, drain in-flight email dispatches, then
// disconnect from the store.
func (s *Server) waitForShutdown(httpServer *http.Server, errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.shutdown()
			return fmt.Errorf("http server failed: %w", err)
		}
	case sig := <-sigChan:
		s.logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("error during http shutdown", zap.Error(err))
		}
	}

	s.shutdown()
	return nil
}

func (s *Server) shutdown() {
	s.queue.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("error disconnecting from MongoDB", zap.Error(err))
	}
}

// healthHandler reports store connectivity for monitoring.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// withCORS allows the configured origins; "*" allows any.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}
