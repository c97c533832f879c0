// Package preview serves the toolkit over HTTP so editors and designers can
// render components and preview merged popups in a browser.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gnana997/popupkit/pkg/toolkit"
)

// MaxBodyBytes bounds request bodies; design documents with inline images
// can be large.
const MaxBodyBytes = 8 << 20

const shutdownTimeout = 5 * time.Second

// Server is the preview HTTP server.
type Server struct {
	tk     *toolkit.Toolkit
	logger *slog.Logger
	router chi.Router
}

// New creates a preview server over tk.
func New(tk *toolkit.Toolkit, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{tk: tk, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	s.Routes(r)
	s.router = r
	return s
}

// Routes registers the preview endpoints on r.
func (s *Server) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/healthz", s.healthz)
	r.Get("/components", s.listComponents)
	r.Get("/components/{componentID}", s.getComponent)
	r.Post("/components/{componentID}/render", s.renderComponent)
	r.Post("/design/detect", s.detectComponents)
	r.Post("/design/update", s.updateComponent)
	r.Post("/design/inject", s.injectComponent)
	r.Post("/reminder/generate", s.generateReminder)
	r.Post("/merge", s.mergeTemplate)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	s.logger.Info("Preview server stopped")
	return nil
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
