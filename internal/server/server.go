package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/shipkit/internal/telemetry"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/webhook"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Webhook delivery outcomes recorded in metrics.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Deduper claims event ids so redeliveries are processed once.
type Deduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// EventHandler processes a verified webhook event.
type EventHandler func(ctx context.Context, event *shipapi.Event) error

// Server receives signed webhook deliveries.
type Server struct {
	port     int
	secret   string
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	dedup    Deduper
	onEvent  EventHandler
}

// Config holds server configuration.
type Config struct {
	Port   int
	Secret string
}

// Option configures a Server.
type Option func(*Server)

// WithDeduper skips events whose id has already been claimed.
func WithDeduper(d Deduper) Option {
	return func(s *Server) { s.dedup = d }
}

// WithEventHandler sets the function called for every accepted event.
func WithEventHandler(fn EventHandler) Option {
	return func(s *Server) { s.onEvent = fn }
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a new server instance. A nil metrics gets a private registry,
// served on /metrics unless WithGatherer says otherwise.
func New(cfg Config, logger *otelzap.Logger, metrics *telemetry.Metrics, opts ...Option) *Server {
	s := &Server{
		port:     cfg.Port,
		secret:   cfg.Secret,
		logger:   logger,
		metrics:  metrics,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = telemetry.NewMetrics(reg)
		if s.gatherer == prometheus.DefaultGatherer {
			s.gatherer = reg
		}
	}
	return s
}

// Handler returns the routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/webhook", s.handleWebhook)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting webhook listener", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down webhook listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type webhookResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		s.respond(w, http.StatusMethodNotAllowed, webhookResponse{Status: OutcomeRejected, Error: "method not allowed, use POST"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.metrics.RecordWebhook(OutcomeRejected)
		s.respond(w, http.StatusRequestEntityTooLarge, webhookResponse{Status: OutcomeRejected, Error: err.Error()})
		return
	}

	event, err := webhook.ValidatePayload(body, r.Header, s.secret)
	if err != nil {
		s.metrics.RecordWebhook(OutcomeRejected)
		s.logger.Ctx(ctx).Warn("Rejected webhook delivery", zap.Error(err))
		status := http.StatusUnauthorized
		if !errors.Is(err, webhook.ErrMissingSignature) && !errors.Is(err, webhook.ErrInvalidSignature) {
			status = http.StatusBadRequest
		}
		s.respond(w, status, webhookResponse{Status: OutcomeRejected, Error: err.Error()})
		return
	}

	if s.dedup != nil && event.ID != "" {
		first, err := s.dedup.Claim(ctx, event.ID)
		if err != nil {
			// An unreachable store does not block delivery.
			s.logger.Ctx(ctx).Warn("Event dedup unavailable", zap.String("event_id", event.ID), zap.Error(err))
		} else if !first {
			s.metrics.RecordWebhook(OutcomeDuplicate)
			s.logger.Ctx(ctx).Debug("Skipping duplicate event", zap.String("event_id", event.ID))
			s.respond(w, http.StatusOK, webhookResponse{Status: OutcomeDuplicate, EventID: event.ID})
			return
		}
	}

	if s.onEvent != nil {
		if err := s.onEvent(ctx, event); err != nil {
			s.metrics.RecordWebhook(OutcomeFailed)
			s.logger.Ctx(ctx).Error("Failed to handle event", zap.String("event_id", event.ID), zap.Error(err))
			if s.dedup != nil && event.ID != "" {
				if relErr := s.dedup.Release(ctx, event.ID); relErr != nil {
					s.logger.Ctx(ctx).Warn("Failed to release event", zap.String("event_id", event.ID), zap.Error(relErr))
				}
			}
			s.respond(w, http.StatusInternalServerError, webhookResponse{Status: OutcomeFailed, EventID: event.ID, Error: err.Error()})
			return
		}
	}

	s.metrics.RecordWebhook(OutcomeAccepted)
	s.logger.Ctx(ctx).Info("Accepted webhook event",
		zap.String("event_id", event.ID),
		zap.String("description", event.Description),
	)
	s.respond(w, http.StatusOK, webhookResponse{Status: OutcomeAccepted, EventID: event.ID})
}

func (s *Server) respond(w http.ResponseWriter, status int, resp webhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
