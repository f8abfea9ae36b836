// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// MetricsFetcher is the outbound-client surface the organization handler
// needs. The concrete implementation owns its own API token.
type MetricsFetcher interface {
	OrganizationMetrics(ctx context.Context) (json.RawMessage, error)
}

// OrganizationHandler proxies aggregate metrics from the upstream platform
// for the dashboard. Separate from the record store; purely read-through.
type OrganizationHandler struct {
	fetcher MetricsFetcher
}

// NewOrganizationHandler creates a new organization metrics handler.
func NewOrganizationHandler(fetcher MetricsFetcher) *OrganizationHandler {
	return &OrganizationHandler{fetcher: fetcher}
}

// HandleGet handles GET /organization requests.
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.fetcher == nil {
		writeError(w, http.StatusServiceUnavailable, "outbound api client not configured")
		return
	}
	data, err := h.fetcher.OrganizationMetrics(r.Context())
	if err != nil {
		writeErrorDetails(w, http.StatusBadGateway, "upstream metrics fetch failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
