package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/placement-tracker/apiserver/config"
	"github.com/placement-tracker/apiserver/internal/db"
	"github.com/placement-tracker/apiserver/internal/handlers"
	"github.com/placement-tracker/apiserver/internal/notify"
	"github.com/placement-tracker/apiserver/internal/services"
	"github.com/placement-tracker/apiserver/internal/storage"
	"github.com/placement-tracker/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	appRepo := store.NewApplicationRepository(dbConn)
	logRepo := store.NewAppOpenLogRepository(dbConn)

	userService := services.NewUserService(userRepo)
	appService := services.NewApplicationService(appRepo)

	sender, err := notify.NewSender(ctx, cfg.Notify, cfg.Broker)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if sender == nil {
		slog.Info("notification delivery disabled; app-open events advance the throttle only")
	}
	notifier := services.NewNotifier(userRepo, logRepo, sender)

	uploadStorage, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if uploadStorage != nil {
		if err := uploadStorage.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure upload bucket: %w", err)
		}
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)
	uploadHandler := handlers.NewUploadHandler(uploadStorage, cfg.Storage.PublicBaseURL)
	eventsHandler := handlers.NewEventsHandler(notifier)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/health", handlers.Health)
	router.Get("/db-health", handlers.DBHealth(dbConn))
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret, cfg.Auth.AdminSignupKey)
	})
	router.Route("/applications", func(r chi.Router) {
		handlers.ApplicationRouter(r, appService, authMiddleware)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, userService, appService, authMiddleware)
	})
	router.With(authMiddleware).Post("/upload", uploadHandler.Upload)
	router.With(authMiddleware).Post("/events/app-open", eventsHandler.AppOpen)

	port := cfg.ServerPort
	if port == 0 {
		port = 4000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	slog.Info("api listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
