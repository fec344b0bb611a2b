package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/beatgrid/internal/beatstore"
	"github.com/roach88/beatgrid/internal/journal"
)

//go:embed static
var staticFiles embed.FS

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// Beats is the subset of beatstore.Store the handlers need.
type Beats interface {
	Scenes(ctx context.Context) ([]string, error)
	Read(ctx context.Context) (beatstore.View, error)
	Append(ctx context.Context, scene string, seconds float64) (beatstore.AppendResult, error)
}

// Options configures a Server.
type Options struct {
	Beats           Beats
	MediaDir        string
	MediaExtensions []string

	// RatePerSecond <= 0 disables limiting of POST /api/beats.
	RatePerSecond float64
	RateBurst     int

	// RequestIDs defaults to UUIDv7.
	RequestIDs journal.IDGenerator
	Logger     *slog.Logger
}

// Server serves the HTTP API and UI.
type Server struct {
	beats   Beats
	media   mediaDir
	limiter *rate.Limiter
	ids     journal.IDGenerator
	logger  *slog.Logger
}

// New builds a Server from opts.
func New(opts Options) *Server {
	s := &Server{
		beats:  opts.Beats,
		media:  newMediaDir(opts.MediaDir, opts.MediaExtensions),
		ids:    opts.RequestIDs,
		logger: opts.Logger,
	}
	if s.ids == nil {
		s.ids = journal.UUIDv7Generator{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.RatePerSecond > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return s
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/beats", s.handleGetBeats)
	mux.Handle("POST /api/beats", s.rateLimited(http.HandlerFunc(s.handlePostBeat)))
	mux.HandleFunc("GET /api/wav-files", s.handleMediaList)
	mux.HandleFunc("GET /api/audio/{name...}", s.handleAudio)

	ui, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServerFS(ui))

	return s.withRequestLog(mux)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	s.logger.Info("server stopped")
	return nil
}
