// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects repositories, services,
// handlers and middleware, and decides:
// - Which URL patterns map to which handler functions
// - Which routes need a token and which need the admin role
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config → sqlite.DB ─┬─ IdentityService ─┬─ SignupService ─┐
//	         TokenCache ┘   AuthService ────┘                 ├─ handlers → routes
//	                        ProfileService, GroupService ─────┘
//
// This is the "composition root": everything is constructed in New and
// nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/club-roster/internal/auth"
	"github.com/sakif/club-roster/internal/cache"
	"github.com/sakif/club-roster/internal/config"
	"github.com/sakif/club-roster/internal/handler"
	"github.com/sakif/club-roster/internal/middleware"
	"github.com/sakif/club-roster/internal/model"
	sqliteRepo "github.com/sakif/club-roster/internal/repository/sqlite"
	"github.com/sakif/club-roster/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the token cache client. Both
// are closed by Close, which Start calls after the HTTP server has drained.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	cache    cache.TokenCache
	registry *prometheus.Registry
}

// New opens the store and the cache and wires every route.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokenCache, err := newTokenCache(ctx, cfg.Redis, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		cache:    tokenCache,
		registry: prometheus.NewRegistry(),
	}

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// newTokenCache returns a Redis cache when an address is configured and a
// no-op cache otherwise. A configured but unreachable Redis is a startup
// error, not a silent fallback.
func newTokenCache(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (cache.TokenCache, error) {
	if cfg.Addr == "" {
		logger.Info("token cache disabled (no redis address)")
		return cache.Noop{}, nil
	}

	rc, err := cache.NewRedis(ctx, cache.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	logger.Info("token cache enabled", slog.String("addr", cfg.Addr))
	return rc, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID   - assigns a unique ID to each request (logged by Logger)
//  2. RealIP      - extracts the real client IP from proxy headers
//  3. Logger      - logs each request with timing info
//  4. Metrics     - Prometheus duration / in-flight / error counters
//  5. Recoverer   - catches panics and returns 500 instead of crashing
//  6. StripSlashes - "/login/" and "/login" hit the same route
//  7. CORS        - the React frontend runs on another origin
func (s *Server) setupRoutes() error {
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics(s.registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(httpMetrics.Handler)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.StripSlashes)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// === Services ===
	tokens, err := auth.NewTokenService(s.config.Auth.TokenSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordServiceWithCost(s.config.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}
	metrics := service.NewMetrics(s.registry)

	identity := service.NewIdentityService(s.db, passwords, service.NewProfileSynchronizer(s.logger), s.cache, s.logger)
	authSvc := service.NewAuthService(s.db, tokens, passwords, s.cache, metrics, s.logger)
	signup := service.NewSignupService(identity, authSvc, metrics, s.logger)
	profiles := service.NewProfileService(s.db, s.logger)
	groups := service.NewGroupService(s.db, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authSvc, signup, s.logger)
	profileHandler := handler.NewProfileHandler(profiles, s.logger)
	groupHandler := handler.NewGroupHandler(groups, s.logger)
	userHandler := handler.NewUserHandler(identity, authSvc, s.logger)

	// === Operational routes ===
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// === API routes ===
	// The same tree is served at the root and under /api.
	api := func(r chi.Router) {
		// Open
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/players/signup", authHandler.HandlePlayerSignup)

		// Token required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authSvc))

			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
			// admin check happens in the service, before the body is read
			r.Post("/signup/coach", authHandler.HandleCoachSignup)

			r.Get("/coaches", profileHandler.HandleListCoaches)
			r.Post("/coaches", profileHandler.HandleCreateCoach)
			r.Get("/coaches/{id}", profileHandler.HandleGetCoach)
			r.Put("/coaches/{id}", profileHandler.HandleUpdateCoach)
			r.Delete("/coaches/{id}", profileHandler.HandleDeleteCoach)

			r.Get("/players", profileHandler.HandleListPlayers)
			r.Post("/players", profileHandler.HandleCreatePlayer)
			r.Get("/players/{id}", profileHandler.HandleGetPlayer)
			r.Put("/players/{id}", profileHandler.HandleUpdatePlayer)
			r.Delete("/players/{id}", profileHandler.HandleDeletePlayer)

			r.Get("/groups", groupHandler.HandleList)
			r.Post("/groups", groupHandler.HandleCreate)
			r.Get("/groups/{id}", groupHandler.HandleGet)
			r.Put("/groups/{id}", groupHandler.HandleUpdate)
			r.Delete("/groups/{id}", groupHandler.HandleDelete)
			r.Post("/groups/{id}/players", groupHandler.HandleAddPlayers)
			r.Delete("/groups/{id}/players/{playerID}", groupHandler.HandleRemovePlayer)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(model.RoleAdmin))
				r.Put("/users/{id}/role", userHandler.HandleChangeRole)
				r.Delete("/users/{id}", userHandler.HandleDelete)
			})
		})
	}
	s.router.Group(api)
	s.router.Route("/api", api)

	return nil
}

// handleHealth reports whether the database answers.
//
// HTTP: GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"ok":false}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// Close releases the cache client and the database.
func (s *Server) Close() error {
	return errors.Join(s.cache.Close(), s.db.Close())
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (shutdown_timeout, 30s default)
//  3. Close the cache client and the database
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing resources", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
