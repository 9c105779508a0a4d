package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/store"
)

// Server wraps the HTTP server with routing, rate limiting and graceful
// shutdown.
type Server struct {
	server *http.Server
	log    *zap.Logger
}

// New builds the server from its dependencies.
func New(cfg *config.Config, log *zap.Logger, st store.Store) *Server {
	mux := http.NewServeMux()
	NewHandler(log, st, cfg).Register(mux)

	var handler http.Handler = mux
	if cfg.Server.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateLimitBurst)
		handler = rateLimit(limiter, handler)
	}

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: handler,
		},
		log: log.Named("api-server"),
	}
}

// rateLimit rejects requests above the configured rate with 429.
func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"Too many requests"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.log.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}
