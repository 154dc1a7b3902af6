package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-intake-bot/internal/config"
	"telegram-intake-bot/internal/infra/metrics"
)

// UpdateSink receives decoded webhook updates for asynchronous processing.
type UpdateSink interface {
	Enqueue(up tgbotapi.Update)
}

// Server is the webhook ingress. It acknowledges every delivery with 200 the
// moment the update is queued: Telegram retries on anything else, and a retry
// of a bad update would just fail again.
type Server struct {
	cfg    *config.Config
	sink   UpdateSink
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(cfg *config.Config, sink UpdateSink, logger *zerolog.Logger) *Server {
	return &Server{cfg: cfg, sink: sink, log: logger}
}

// Router builds the route table. Split out so tests can drive it through
// httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(s.cfg.Webhook.Path, s.handleWebhook)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Webhook.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Webhook.Port).Str("path", s.cfg.Webhook.Path).Msg("webhook server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.ObserveWebhookLatency(time.Since(start).Seconds()) }()

	var up tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		// An undecodable body still gets a 200: there is nothing a Telegram
		// retry could fix.
		metrics.IncUpdateDropped("undecodable_payload")
		s.log.Warn().Err(err).Msg("undecodable webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	s.sink.Enqueue(up)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
