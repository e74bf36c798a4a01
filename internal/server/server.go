// Package server implements the HTTP server that exposes the Docify
// assistant via a small JSON API, plus health, readiness, and Prometheus
// metrics endpoints. The server is started by the `docify serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docify-online/docify-go/internal/assistant"
	"github.com/docify-online/docify-go/internal/logging"
	"github.com/docify-online/docify-go/internal/store"
)

// New constructs a Server from the provided assistant and config.
func New(asst *assistant.Assistant, cfg *Config) (*Server, error) {
	if asst == nil {
		return nil, fmt.Errorf("server: assistant must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full generator call plus fallbacks.
		cfg.WriteTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.MetricsRegistry == nil {
		cfg.MetricsRegistry = prometheus.DefaultRegisterer
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		answerer: asst,
		cfg:      cfg,
		log:      cfg.Logger,
		pingers:  cfg.Pingers,
		history:  cfg.History,
		metrics:  newServerMetrics(cfg.MetricsRegistry),
	}

	if cfg.APIKey == "" {
		s.log.Warn("DOCIFY_API_KEY not set — API authentication is disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat",
		rl.middleware(authMiddleware(cfg.APIKey, s.instrument("chat", http.HandlerFunc(s.handleChat)))))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("docify server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleChat handles POST /api/chat requests. The assistant never fails a
// well-formed query, so the only client-visible errors are bad input (400)
// and unexpected internal faults (500).
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.chatRequestsTotal.WithLabelValues("", "bad_request").Inc()
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ans, err := s.answerer.Answer(r.Context(), req.Message, req.Symptoms)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuery) {
			s.metrics.chatRequestsTotal.WithLabelValues("", "bad_request").Inc()
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		s.metrics.chatRequestsTotal.WithLabelValues("", "error").Inc()
		log.Error("chat request failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	tier := ans.Tier.String()
	s.metrics.chatRequestsTotal.WithLabelValues(tier, "ok").Inc()
	s.metrics.chatDurationSeconds.WithLabelValues(tier).Observe(time.Since(start).Seconds())

	// Persist the turn to the consultation log (non-fatal on error).
	if s.history != nil {
		rec := store.Consultation{
			Query:    req.Message,
			Symptoms: req.Symptoms,
			Reply:    ans.Text,
			Tier:     tier,
		}
		if err := s.history.Append(r.Context(), rec); err != nil {
			log.Warn("history: failed to persist consultation", slog.Any("error", err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(chatResponse{
		Reply:    ans.Text,
		Tier:     tier,
		Fallback: ans.Fallback,
	}); err != nil {
		log.Error("chat encode error", slog.Any("error", err))
	}
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
