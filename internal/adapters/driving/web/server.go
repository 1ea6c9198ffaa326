package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxBodyBytes bounds form and JSON request bodies.
const maxBodyBytes = 64 << 10

// Config configures the HTTP listener.
type Config struct {
	Server    domain.ServerSettings
	RateLimit domain.RateLimitSettings
}

// Server wraps the HTTP server and its routes.
type Server struct {
	cfg     Config
	ports   *Ports
	mux     *http.ServeMux
	server  *http.Server
	limiter *clientLimiter
	page    *template.Template
}

// NewServer constructs a server with every route registered.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		ports: ports,
		mux:   http.NewServeMux(),
		page:  page,
	}
	if cfg.RateLimit.Enabled() {
		s.limiter = newClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	s.routes()

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           loggingMiddleware(s.mux),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.Handle("POST /generate", s.rateLimited(http.HandlerFunc(s.handleGenerate)))
	s.mux.Handle("POST /api/v1/policies", s.rateLimited(http.HandlerFunc(s.handleCreatePolicy)))
	s.mux.HandleFunc("GET /api/v1/evaluations", s.handleListEvaluations)
	s.mux.HandleFunc("GET /api/v1/evaluations/{id}", s.handleGetEvaluation)
	s.mux.HandleFunc("GET /api/v1/guardrails", s.handleGuardrails)
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run listens on the configured address and blocks until ctx is cancelled
// or the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server listening on %s", ln.Addr())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("shutting down web server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("web server stopped")
	return nil
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Logger().Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
