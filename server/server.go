// Package server serves the codec, the URL composer and the saved views over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pakkasys/fluidquery/api"
	"github.com/pakkasys/fluidquery/config"
	"github.com/pakkasys/fluidquery/endpoint"
	"github.com/pakkasys/fluidquery/logging"
	"github.com/pakkasys/fluidquery/metrics"
	"github.com/pakkasys/fluidquery/middleware"
	"github.com/pakkasys/fluidquery/middleware/reqhandler"
	"github.com/pakkasys/fluidquery/views"
)

// ErrorOrigin is the origin set on API errors written by the server.
const ErrorOrigin = "fluidquery"

// Observer records the outcome of an operation.
type Observer interface {
	ObserveOperation(operation string, outcome string)
}

// Options configure the router.
type Options struct {
	Config  *config.Config   // Defaults are used when nil.
	Logger  *slog.Logger     // slog.Default() when nil.
	Metrics *metrics.Metrics // Metrics are disabled when nil.
	Views   *views.Service   // The view endpoints are left out when nil.
}

// LoggerFn returns the request logger carried by the request context.
func LoggerFn(r *http.Request) api.ILogger {
	return logging.Adapter{Logger: logging.FromContext(r.Context())}
}

func errorLoggerFn(r *http.Request) func(messages ...any) {
	return logging.Adapter{Logger: logging.FromContext(r.Context())}.Error
}

func requestLoggerFn(r *http.Request) func(messages ...any) {
	return logging.Adapter{Logger: logging.FromContext(r.Context())}.Info
}

// NewStack returns the middleware stack shared by all endpoints.
func NewStack(cfg *config.Config, m *metrics.Metrics) *endpoint.Stack {
	builder := middleware.NewStackBuilder(
		reqhandler.NewTraceID,
		errorLoggerFn,
		requestLoggerFn,
		cfg.Server.MaxRequestBodySize,
	)
	if len(cfg.CORS.Origins) != 0 {
		builder.MustAddMiddleware(*middleware.CORSWrapper(
			cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers,
		))
	}
	if m != nil {
		builder.MustAddMiddleware(*middleware.MetricsWrapper(m.Middleware))
	}
	return builder.Build()
}

// Definitions returns the endpoint definitions served by the router.
func Definitions(opts Options) []endpoint.Definition {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}

	e := &endpoints{
		stack:    NewStack(cfg, opts.Metrics),
		output:   api.NewJSONOutput(LoggerFn, ErrorOrigin),
		loggerFn: LoggerFn,
		views:    opts.Views,
	}
	if opts.Metrics != nil {
		e.observer = opts.Metrics
	}

	definitions := e.codecDefinitions()
	if opts.Views != nil {
		definitions = append(definitions, e.viewDefinitions()...)
	}
	return definitions
}

// NewRouter returns the HTTP handler serving every endpoint.
func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
		})
	})

	definitions := Definitions(opts)
	for i := range definitions {
		router.Method(
			definitions[i].Method,
			definitions[i].URL,
			definitions[i].HTTPHandler(),
		)
	}

	// Preflight requests are answered by the CORS middleware.
	if len(cfg.CORS.Origins) != 0 {
		preflight := NewStack(cfg, nil).Handler(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}),
		)
		for i := range definitions {
			router.Method(http.MethodOptions, definitions[i].URL, preflight)
		}
	}

	if opts.Metrics != nil && cfg.Server.Metrics {
		router.Method(http.MethodGet, MetricsPath, opts.Metrics.Handler())
	}

	return router
}

// Server is the HTTP server.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler
}

// New returns a new Server.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Defaults()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		cfg:     opts.Config,
		logger:  opts.Logger,
		handler: NewRouter(opts),
	}
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done and then shuts down
// gracefully, waiting at most the configured shutdown timeout for active
// requests.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BaseContext: func(net.Listener) context.Context {
			return logging.WithLogger(context.Background(), s.logger)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", listener.Addr().String())
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
