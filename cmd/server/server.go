package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	appkafka "example.com/clyqfeed/internal/broker"
	"example.com/clyqfeed/internal/logger"
	"example.com/clyqfeed/internal/metrics"
	"example.com/clyqfeed/internal/middleware"
	"example.com/clyqfeed/internal/store"
)

// Config carries the HTTP-level settings of the feed service.
type Config struct {
	Addr              string
	CertFile          string
	KeyFile           string
	JWTSecret         []byte
	PlaceholderAuthor string
}

type Server struct {
	store     store.FeedStore
	publisher appkafka.PostPublisher
	metrics   *metrics.Metrics
	cfg       Config
}

var logg = logger.New()

// New wires a feed server. A nil publisher disables event publishing.
func New(st store.FeedStore, pub appkafka.PostPublisher, m *metrics.Metrics, cfg Config) *Server {
	if pub == nil {
		pub = appkafka.NopPublisher{}
	}
	if m == nil {
		m = metrics.New()
	}
	if cfg.PlaceholderAuthor == "" {
		cfg.PlaceholderAuthor = "You"
	}
	return &Server{
		store:     st,
		publisher: pub,
		metrics:   m,
		cfg:       cfg,
	}
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	// --- HTTP routes ---
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.rootHandler)
	mux.HandleFunc("GET /api/events/trending", s.trendingHandler)
	mux.HandleFunc("GET /api/events/upcoming", s.upcomingHandler)
	mux.HandleFunc("GET /api/posts", s.listPostsHandler)
	mux.HandleFunc("POST /api/posts", s.createPostHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Metrics must wrap the mux directly to see the matched pattern.
	return middleware.Chain(mux,
		middleware.CORS,
		middleware.RequestID,
		middleware.Logging(logg),
		middleware.Identity(s.cfg.JWTSecret),
		middleware.Metrics(s.metrics),
	)
}

// Run serves until ctx is canceled, then shuts down gracefully.
// HTTPS is used when both certificate and key files are configured.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Start server in a goroutine ---
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
			logg.Info("server", "Starting HTTPS server on "+s.cfg.Addr)
			err = srv.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
		} else {
			logg.Info("server", "Starting HTTP server on "+s.cfg.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server", "Server stopped unexpectedly", err)
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful shutdown ---
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
		return err
	}
	logg.Info("server", "Server stopped gracefully")
	return nil
}
