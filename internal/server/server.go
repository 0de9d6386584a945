// Package server exposes the reconciled wallet view over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/tutorlink/walletview/internal/logger"
	"github.com/tutorlink/walletview/internal/view"
	"github.com/tutorlink/walletview/internal/wallet"
)

// Wallet is the read side of wallet.Service used by the handlers.
type Wallet interface {
	View(f view.Filter, page int) (view.Page, error)
	Snapshot() wallet.Snapshot
	Refresh(ctx context.Context) bool
	IsRefreshing() bool
	SetAutoRefresh(enabled bool)
}

// Config holds server configuration.
type Config struct {
	Addr           string
	Log            zerolog.Logger
	Wallet         Wallet
	AllowedOrigins []string // defaults to "*"
}

// Server is the HTTP read API.
type Server struct {
	router *chi.Mux
	server *http.Server
	wallet Wallet
	log    zerolog.Logger
}

// New creates a Server. It does not listen until Start.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		wallet: cfg.Wallet,
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/wallet", func(r chi.Router) {
		r.Get("/transactions", s.handleTransactions)
		r.Get("/transactions/{key}", s.handleTransaction)
		r.Get("/status", s.handleStatus)
		r.Post("/refresh", s.handleRefresh)
		r.Put("/auto-refresh", s.handleAutoRefresh)
	})
}

// Start listens until Shutdown. It returns http.ErrServerClosed after a
// clean shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(logger.WithContext(r.Context(), reqLog))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		reqLog.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Msg("HTTP request")
	})
}
