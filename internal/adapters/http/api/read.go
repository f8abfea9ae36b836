// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
)

// ReadHandler serves the record collection to the dashboard consumer.
type ReadHandler struct {
	deps Dependencies
}

// NewReadHandler creates a new read handler.
func NewReadHandler(deps Dependencies) *ReadHandler {
	return &ReadHandler{deps: deps}
}

// profilesResponse is the default-mode read shape.
type profilesResponse struct {
	Success     bool                   `json:"success"`
	Count       int                    `json:"count"`
	Profiles    []model.WellnessRecord `json:"profiles"`
	LastUpdated *time.Time             `json:"lastUpdated,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

// demoResponse is the mode=demo read shape.
type demoResponse struct {
	Success  bool                   `json:"success"`
	Mode     string                 `json:"mode"`
	Count    int                    `json:"count"`
	Profiles []model.WellnessRecord `json:"profiles"`
}

// statusResponse is the mode=status liveness shape.
type statusResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleGet handles GET /webhook?mode= requests. Reads never mutate; they
// observe whatever the store last fully persisted.
func (h *ReadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("mode") {
	case "demo":
		profiles := h.deps.DemoProfiles(r.Context())
		writeJSON(w, http.StatusOK, demoResponse{
			Success:  true,
			Mode:     "demo",
			Count:    len(profiles),
			Profiles: profiles,
		})
	case "status":
		writeJSON(w, http.StatusOK, statusResponse{
			Success:   true,
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	default:
		profiles, lastUpdated, err := h.deps.Profiles(r.Context())
		if err != nil || len(profiles) == 0 {
			// An empty or unreadable store is a valid initial state,
			// not an error; the consumer treats it as "no data yet".
			writeJSON(w, http.StatusOK, profilesResponse{
				Success:  true,
				Count:    0,
				Profiles: []model.WellnessRecord{},
				Message:  "no webhook data received yet",
			})
			return
		}
		writeJSON(w, http.StatusOK, profilesResponse{
			Success:     true,
			Count:       len(profiles),
			Profiles:    profiles,
			LastUpdated: &lastUpdated,
		})
	}
}
