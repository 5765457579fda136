// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and routes,
// and decides how the server starts and stops.
//
// DEPENDENCY INJECTION FLOW:
//
//	cmd/server (config) → server.New creates:
//	  sqlite.DB → AuthService / CatalogService / FavoriteService → handlers
//
// All dependencies are wired in one place (New/setupRoutes), the
// "composition root", rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/pokedex-api/internal/auth"
	"github.com/sakif/pokedex-api/internal/handler"
	"github.com/sakif/pokedex-api/internal/middleware"
	sqliteRepo "github.com/sakif/pokedex-api/internal/repository/sqlite"
	"github.com/sakif/pokedex-api/internal/seed"
	"github.com/sakif/pokedex-api/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// SeedOnStart loads the catalog before serving. SeedFile overrides
	// the embedded catalog when set.
	SeedOnStart bool
	SeedFile    string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it after the
// HTTP server has drained; callers that never Start must call Close.
type Server struct {
	router   *chi.Mux
	config   Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	registry *prometheus.Registry
}

// New opens the database, applies migrations, optionally seeds the
// catalog, and wires every route.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.DBPath != sqliteRepo.MemoryPath {
		// Like `mkdir -p`; 0755 = owner rwx, others rx.
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	if cfg.SeedOnStart {
		if err := s.seed(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) seed(ctx context.Context) error {
	catalog, err := seed.Load(s.config.SeedFile)
	if err != nil {
		return fmt.Errorf("loading seed catalog: %w", err)
	}
	n, err := seed.Apply(ctx, s.db, catalog)
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	s.logger.Info("catalog seeded", slog.Int("pokemon", n))
	return nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                                    → DB ping
// GET    /metrics                                    → Prometheus exposition
// POST   /api/v1/users                               → register
// GET    /api/v1/users/me                            → current user        [auth]
// POST   /api/v1/session/email                       → login
// GET    /api/v1/pokemon                             → filtered page       [optional auth]
// GET    /api/v1/pokemon/types                       → distinct types
// GET    /api/v1/pokemon/details/{name}              → lookup by name
// GET    /api/v1/pokemon/{id}                        → lookup by id
// GET    /api/v1/pokemon/{id}/evolution-requirements → evolution cost
// POST   /api/v1/pokemon/{id}/favorite               → add favorite        [auth]
// DELETE /api/v1/pokemon/{id}/favorite               → remove favorite     [auth]
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Metrics and Logger: both read the route pattern after the handler ran
// 4. Recoverer: catches panics and returns 500 instead of crashing; it
//    sits inside the logger so a panic is still logged as a 500
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(s.registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(metrics.Instrument)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// DEPENDENCY CHAIN:
	//   s.db implements every repository interface
	//   services receive the interfaces, handlers receive the services
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	catalogService := service.NewCatalogService(s.db, s.logger)
	favoriteService := service.NewFavoriteService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	pokemonHandler := handler.NewPokemonHandler(catalogService, favoriteService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	requireAuth := auth.RequireAuth(authService, s.logger)
	optionalAuth := auth.OptionalAuth(authService, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", authHandler.HandleRegister)
		r.Post("/session/email", authHandler.HandleLogin)
		r.With(requireAuth).Get("/users/me", authHandler.HandleMe)

		r.Route("/pokemon", func(r chi.Router) {
			r.With(optionalAuth).Get("/", pokemonHandler.HandleList)
			r.Get("/types", pokemonHandler.HandleTypes)
			r.Get("/details/{name}", pokemonHandler.HandleGetByName)
			r.Get("/{id}", pokemonHandler.HandleGetByID)
			r.Get("/{id}/evolution-requirements", pokemonHandler.HandleEvolutionRequirement)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{id}/favorite", pokemonHandler.HandleAddFavorite)
				r.Delete("/{id}/favorite", pokemonHandler.HandleRemoveFavorite)
			})
		})
	})

	return nil
}

// Router exposes the fully wired handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and blocks until ctx is cancelled, SIGINT
// or SIGTERM arrives, or the listener fails.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		// Give in-flight requests 30 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
