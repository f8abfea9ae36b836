// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/event"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/signature"
)

// Webhook protocol headers. Routing metadata lives in headers, not the
// body; the signature covers the raw body bytes only.
const (
	HeaderSignature       = "X-Signature"
	HeaderExternalID      = "X-External-Id"
	HeaderEventType       = "X-Event-Type"
	HeaderBypassSignature = "X-Bypass-Signature"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ApplyEvent merges a parsed event into the record for externalID
	// and persists. It returns the number of profiles the delivery
	// touched (0 for acknowledgment-only events).
	ApplyEvent(ctx context.Context, externalID string, evt event.Event) (int, error)

	// Profiles returns the persisted records and their maximum lastUpdated.
	Profiles(ctx context.Context) ([]model.WellnessRecord, time.Time, error)

	// DemoProfiles returns a freshly generated synthetic population.
	DemoProfiles(ctx context.Context) []model.WellnessRecord

	// RecordActivity appends a best-effort diagnostic line.
	RecordActivity(format string, args ...any)
}

// Server wires HTTP routes for the webhook API.
type Server struct {
	healthHandler       *HealthHandler
	webhookHandler      *WebhookHandler
	readHandler         *ReadHandler
	statsHandler        *StatsHandler
	organizationHandler *OrganizationHandler
}

// NewServer creates a new API server with all handlers. The verifier and
// allowBypass flag are fixed at construction; honoring the bypass header is
// a deployment decision, never a runtime default. fetcher may be nil when
// no outbound credentials are configured.
func NewServer(deps Dependencies, statsProvider StatsProvider, verifier *signature.Verifier, allowBypass bool, fetcher MetricsFetcher) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		webhookHandler:      NewWebhookHandler(deps, verifier, allowBypass),
		readHandler:         NewReadHandler(deps),
		statsHandler:        NewStatsHandler(statsProvider),
		organizationHandler: NewOrganizationHandler(fetcher),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/organization", MetricsMiddleware(s.organizationHandler.HandleGet, "organization"))
	mux.HandleFunc("/webhook", MetricsMiddleware(s.handleWebhookPath, "webhook"))
}

// handleWebhookPath dispatches by method: POST ingests a delivery, GET
// serves the read modes.
func (s *Server) handleWebhookPath(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.webhookHandler.HandlePost(w, r)
	case http.MethodGet:
		s.readHandler.HandleGet(w, r)
	default:
		http.NotFound(w, r)
	}
}

// webhookAck is the success response for an ingested delivery.
type webhookAck struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ProfilesProcessed int    `json:"profilesProcessed"`
	ExternalID        string `json:"externalId"`
	EventType         string `json:"eventType"`
}

// errorResponse is the wire shape for all failures; Details is set only on
// server-side faults.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorDetails(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
