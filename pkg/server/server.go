// Package server serves the web UI and its JSON API: formatting, the fetch
// proxy for remote logs and permalink encoding.
//
// Routes:
//
//	GET  /                       web UI (embedded, or a static directory)
//	POST /api/format             {"text","format","standalone"} -> {"output"}
//	POST /api/fetch              {"url"} or url=... -> {"text"}
//	POST /api/permalink          {"text"} -> {"fragment"}
//	POST /api/permalink/decode   {"fragment"} -> {"text","warning"}
//	GET  /api/styles.css         category stylesheet
//	GET  /healthz                liveness
//	GET  /metrics                Prometheus metrics
//
// Errors are JSON objects {"error","code","status"}.
package server

import (
	"context"
	"embed"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

//go:embed web
var webFS embed.FS

// DefaultBodyLimit bounds request bodies when Options.BodyLimit is unset
const DefaultBodyLimit = 2 << 20

// ShutdownTimeout bounds the graceful shutdown
const ShutdownTimeout = 5 * time.Second

// Fetcher retrieves remote text for the fetch proxy
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Options configures a Server
type Options struct {
	Addr      string
	BodyLimit int64
	// StaticDir serves the UI from disk instead of the embedded copy
	StaticDir string
	Catalog   *annotate.Catalog
	Fetcher   Fetcher
}

// Server is the HTTP front end
type Server struct {
	opts    Options
	router  *mux.Router
	metrics *Metrics
	logger  zerolog.Logger
}

// New creates a server and registers its routes
func New(opts Options) (*Server, error) {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	if opts.Catalog == nil {
		opts.Catalog = annotate.Default
	}
	if opts.Fetcher == nil {
		return nil, errors.New(errors.ErrInternal, "server needs a fetcher")
	}

	s := &Server{
		opts:    opts,
		router:  mux.NewRouter(),
		metrics: NewMetrics(),
		logger:  logging.GetLogger("server"),
	}

	static, err := s.staticFS()
	if err != nil {
		return nil, err
	}

	s.router.Use(s.requestID, s.accessLog, s.recoverer, s.limitBody)
	s.RegisterRoutes(s.router)
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods("GET", "HEAD").Name("static")
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.Newf(errors.ErrFileNotFound, "no route for %s", r.URL.Path))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.Newf(errors.ErrInvalidInput, "method %s not allowed", r.Method).
			WithDetail("http_status", http.StatusMethodNotAllowed))
	})
	return s, nil
}

// RegisterRoutes registers the API routes on router
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/format", s.handleFormat).Methods("POST")
	router.HandleFunc("/api/fetch", s.handleFetch).Methods("POST")
	router.HandleFunc("/api/permalink", s.handlePermalink).Methods("POST")
	router.HandleFunc("/api/permalink/decode", s.handlePermalinkDecode).Methods("POST")
	router.HandleFunc("/api/styles.css", s.handleStyles).Methods("GET", "HEAD")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET", "HEAD")
	router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the collectors of the server
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run listens on the configured address until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Server listening")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, errors.ErrInternal, "server failed")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "server shutdown failed")
	}
	return nil
}

func (s *Server) staticFS() (fs.FS, error) {
	if s.opts.StaticDir == "" {
		sub, err := fs.Sub(webFS, "web")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "embedded web UI missing")
		}
		return sub, nil
	}

	info, err := os.Stat(s.opts.StaticDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileNotFound, "static directory not found").
			WithDetail("path", s.opts.StaticDir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "static path is not a directory").
			WithDetail("path", s.opts.StaticDir)
	}
	return os.DirFS(s.opts.StaticDir), nil
}
