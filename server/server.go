// Package server exposes the converter over HTTP.
//
// GET / answers with a welcome message and each output format has its own
// multipart upload endpoint under /convert. POST /analyze returns a JSON
// summary of the recovered document structure instead of a file.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"
	"golang.org/x/text/language"

	"github.com/rezaldwntr/pdf-backend-api/format"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// DefaultMaxUpload is the upload size limit used when Config.MaxUpload is zero
const DefaultMaxUpload = 25 << 20

// Config holds the per-request conversion settings of a Server
type Config struct {
	MaxUpload      int64         // bytes, DefaultMaxUpload when zero
	RequestTimeout time.Duration // zero means no deadline
	Workers        int
	Tuning         tuning.Config
	Locale         language.Tag
	TempDir        string // parent of the per-request directories, os.TempDir() when empty
	Logger         *slog.Logger
}

// Server is the HTTP front end of the converter
type Server struct {
	cfg    Config
	logger *slog.Logger
	router *chi.Mux
}

// New creates a server and registers its routes
func New(cfg Config) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Tuning == (tuning.Config{}) {
		cfg.Tuning = tuning.Default()
	}
	if cfg.Locale == language.Und {
		cfg.Locale = language.English
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(allowAllOrigins)

	r.Get("/", s.handleRoot)
	r.Route("/convert", func(r chi.Router) {
		r.Post("/pdf-to-docx", s.handleConvert(format.DOCX))
		r.Post("/pdf-to-excel", s.handleConvert(format.XLSX))
		r.Post("/pdf-to-ppt", s.handleConvert(format.PPTX))
	})
	r.Post("/analyze", s.handleAnalyze)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until ctx is done. At most
// maxConns connections are accepted at once when maxConns is positive.
func (s *Server) ListenAndServe(ctx context.Context, addr string, maxConns int) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("HTTP server started",
		"addr", ln.Addr().String(),
		"max_upload", humanize.IBytes(uint64(s.cfg.MaxUpload)))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
