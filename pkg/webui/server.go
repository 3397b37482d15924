// Package webui provides the HTTP API of the skill builder and, in
// production, serves the single-page frontend.
package webui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/presenter"
	"github.com/skillbuilder/skillbuilder/pkg/ratelimit"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const (
	// EnvironmentProduction enables static frontend serving
	EnvironmentProduction = "production"
	// DefaultMaxBodyBytes limits request bodies to 10 KiB
	DefaultMaxBodyBytes = 10 << 10

	generalLimitMessage  = "Too many requests, please try again later."
	generateLimitMessage = "Generation limit reached. Please try again in an hour."
)

// CatalogService is the read and update side of the skill library
type CatalogService interface {
	ListPublished(ctx context.Context) ([]skilltypes.Summary, error)
	GetByID(ctx context.Context, id string) (skilltypes.Record, error)
	GetRawContent(ctx context.Context, id string) (string, error)
	Publish(ctx context.Context, id string) (skilltypes.Record, error)
	Update(ctx context.Context, id string, patch skilltypes.Patch) (skilltypes.Record, error)
	Export(ctx context.Context, w io.Writer, ids []string) (int, error)
}

// SkillBuilder runs the generation pipeline
type SkillBuilder interface {
	Build(ctx context.Context, prompt string, credential string) (skilltypes.Record, error)
}

// Server represents the HTTP server
type Server struct {
	router          *mux.Router
	catalog         CatalogService
	builder         SkillBuilder
	config          *ServerConfig
	server          *http.Server
	startedAt       time.Time
	generalLimiter  ratelimit.Limiter
	generateLimiter ratelimit.Limiter
	apiFallback     *mux.Route
}

// ServerConfig holds the configuration for the web server
type ServerConfig struct {
	Host         string
	Port         int
	Environment  string
	StaticDir    string
	MaxBodyBytes int64
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}

	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.Environment == EnvironmentProduction && c.StaticDir == "" {
		return errors.New("static directory is required in production")
	}

	return nil
}

// Option configures a Server
type Option func(*Server)

// WithRateLimiters sets the limiter for all API traffic and the stricter
// one for generation requests
func WithRateLimiters(general, generate ratelimit.Limiter) Option {
	return func(s *Server) {
		s.generalLimiter = general
		s.generateLimiter = generate
	}
}

// NewServer creates a new HTTP server
func NewServer(config *ServerConfig, catalog CatalogService, builder SkillBuilder, opts ...Option) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		router:          mux.NewRouter(),
		catalog:         catalog,
		builder:         builder,
		config:          config,
		startedAt:       time.Now(),
		generalLimiter:  ratelimit.NewMemoryLimiter(ratelimit.Rule{Max: 100, Window: 15 * time.Minute}),
		generateLimiter: ratelimit.NewMemoryLimiter(ratelimit.Rule{Max: 1000, Window: time.Hour}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(ratelimit.Middleware(s.generalLimiter, generalLimitMessage))

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	generate := ratelimit.Middleware(s.generateLimiter, generateLimitMessage)
	api.Handle("/generate", generate(http.HandlerFunc(s.handleGenerate))).Methods("POST")

	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	api.HandleFunc("/skills/export", s.handleExportSkills).Methods("POST")
	api.HandleFunc("/skills/{id}", s.handleGetSkill).Methods("GET")
	api.HandleFunc("/skills/{id}", s.handleUpdateSkill).Methods("PUT")
	api.HandleFunc("/skills/{id}/raw", s.handleGetRawSkill).Methods("GET")
	api.HandleFunc("/skills/{id}/publish", s.handlePublishSkill).Methods("POST")
	s.apiFallback = api.PathPrefix("/").HandlerFunc(s.handleAPINotFound)

	if s.config.Environment == EnvironmentProduction {
		s.router.PathPrefix("/").Handler(newSPAHandler(s.config.StaticDir))
	}

	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.requestContextMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.securityHeadersMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.bodyLimitMiddleware)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	presenter.Info(fmt.Sprintf("Skill builder listening on http://%s", address))
	presenter.Info(fmt.Sprintf("Health check: http://%s/api/health", address))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.G(ctx).WithError(err).Error("web server error")
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return errors.Wrap(err, "web server failed")
	}

	logger.G(ctx).Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop stops the web server immediately
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
