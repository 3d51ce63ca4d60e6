package server

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-Id"

// requestID tags each request with an id, reusing a valid incoming one, and
// puts a logger carrying it in the request context
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// accessLog logs every request and records its metrics
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		elapsed := time.Since(start)
		route := routeName(r)
		s.metrics.observeRequest(route, r.Method, wrapped.statusCode, elapsed)

		// Skip static assets and metrics
		if route == "static" || r.URL.Path == "/metrics" {
			return
		}
		logger := zerolog.Ctx(r.Context())
		event := logger.Info()
		if wrapped.statusCode >= 400 {
			event = logger.Warn()
		}
		if wrapped.statusCode >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", elapsed).
			Msg("Request handled")
	})
}

// recoverer turns a handler panic into a 500 answer
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.metrics.panics.Inc()
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("Handler panicked")
				writeError(w, r, errors.New(errors.ErrInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limitBody bounds request bodies
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip body limit for GET/HEAD/OPTIONS
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > s.opts.BodyLimit {
			writeError(w, r, errors.Newf(errors.ErrInvalidInput, "request body larger than %d bytes", s.opts.BodyLimit).
				WithDetail("http_status", http.StatusRequestEntityTooLarge))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.BodyLimit)
		next.ServeHTTP(w, r)
	})
}

// routeName returns the route template of the request, or "static" for the
// UI catch-all
func routeName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	if name := route.GetName(); name != "" {
		return name
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSuffix(tpl, "/")
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(p)
}

// Implement http.Flusher so streaming handlers keep working
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
