// Package api provides the HTTP API server and handlers for the catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/locallibrary/catalog-server/internal/config"
	"github.com/locallibrary/catalog-server/internal/http/response"
	"github.com/locallibrary/catalog-server/internal/logger"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *sqlite.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *sqlite.Store, services *Services, cfg *config.Config, log *logger.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:           store,
		services:        services,
		router:          router,
		logger:          log.Logger,
		authRateLimiter: NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginBurst),
	}

	s.setupMiddleware(cfg, log)

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", Version)
	humaConfig.Info.Description = "Browse the catalog, manage books and authors, and renew loans."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
// Must run before any route is registered.
func (s *Server) setupMiddleware(cfg *config.Config, log *logger.Logger) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.authRateLimiter, "/api/v1/auth/", s.logger))
	s.router.Use(authMiddleware(s.services.Auth))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "Method not allowed", s.logger)
	})
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerAuthorRoutes()
	s.registerGenreRoutes()
	s.registerLoanRoutes()
	s.registerSearchRoutes()
}
