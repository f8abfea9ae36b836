// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/event"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/signature"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/pkg/metrics"
)

// WebhookHandler ingests signed event deliveries.
//
// A delivery walks a fixed sequence, erroring out at the first failed
// guard: headers present -> signature valid (or bypassed) -> body parses ->
// event dispatch -> store update -> response. Order matters: a signature
// failure must be distinguishable (401) from a malformed body after a valid
// signature (400).
type WebhookHandler struct {
	deps        Dependencies
	verifier    *signature.Verifier
	allowBypass bool
}

// NewWebhookHandler creates a new webhook ingestion handler.
func NewWebhookHandler(deps Dependencies, verifier *signature.Verifier, allowBypass bool) *WebhookHandler {
	return &WebhookHandler{deps: deps, verifier: verifier, allowBypass: allowBypass}
}

// HandlePost handles POST /webhook deliveries.
func (h *WebhookHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	externalID := r.Header.Get(HeaderExternalID)
	eventType := r.Header.Get(HeaderEventType)
	if externalID == "" || eventType == "" {
		h.reject(w, http.StatusBadRequest, "missing required headers",
			"ERROR missing X-External-Id or X-Event-Type header")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.reject(w, http.StatusBadRequest, "unreadable request body",
			"ERROR external_id=%s type=%s | body read failed: %v", externalID, eventType, err)
		return
	}

	// The signature covers the raw bytes as received; verify before any
	// JSON handling.
	bypassed := h.allowBypass && r.Header.Get(HeaderBypassSignature) != ""
	if !bypassed {
		switch verr := h.verifier.Verify(body, r.Header.Get(HeaderSignature)); {
		case verr == nil:
		case errors.Is(verr, signature.ErrNoSecret):
			h.reject(w, http.StatusInternalServerError, "webhook secret not configured",
				"ERROR external_id=%s type=%s | server misconfigured: no webhook secret", externalID, eventType)
			return
		case errors.Is(verr, signature.ErrMissingSignature):
			metrics.RecordSignatureFailure()
			h.reject(w, http.StatusBadRequest, "missing signature",
				"ERROR external_id=%s type=%s | missing signature header", externalID, eventType)
			return
		default:
			metrics.RecordSignatureFailure()
			h.reject(w, http.StatusUnauthorized, "invalid signature",
				"ERROR external_id=%s type=%s | signature mismatch", externalID, eventType)
			return
		}
	}

	// Parse is the JSON validity check for recognized types; unrecognized
	// types are never decoded, so they get a plain syntax check instead.
	evt, err := event.Parse(eventType, body)
	if err != nil {
		h.reject(w, http.StatusBadRequest, "malformed request body",
			"ERROR external_id=%s type=%s | %v", externalID, eventType, err)
		return
	}
	if evt.Kind() == event.KindUnknown && !json.Valid(body) {
		h.reject(w, http.StatusBadRequest, "malformed request body",
			"ERROR external_id=%s type=%s | body is not valid JSON", externalID, eventType)
		return
	}

	processed, err := h.deps.ApplyEvent(r.Context(), externalID, evt)
	if err != nil {
		metrics.RecordWebhookDelivery(eventType, "failed")
		h.deps.RecordActivity("ERROR external_id=%s type=%s | persist failed: %v", externalID, eventType, err)
		writeErrorDetails(w, http.StatusInternalServerError, "failed to persist record", err.Error())
		return
	}

	message := "event processed"
	outcome := "ok"
	if !evt.Mutates() {
		// Unrecognized and data-log events are acknowledged without
		// mutation; the provider must not be made to retry on
		// classification gaps.
		message = "event acknowledged"
		outcome = "acknowledged"
		if evt.Kind() == event.KindUnknown {
			h.deps.RecordActivity("EVENT external_id=%s type=%s | unrecognized event type, payload=%s",
				externalID, eventType, string(body))
		}
	}
	if evt.Kind() != event.KindUnknown {
		h.deps.RecordActivity("EVENT external_id=%s type=%s | %s", externalID, eventType, message)
	}
	metrics.RecordWebhookDelivery(eventType, outcome)

	writeJSON(w, http.StatusOK, webhookAck{
		Success:           true,
		Message:           message,
		ProfilesProcessed: processed,
		ExternalID:        externalID,
		EventType:         eventType,
	})
}

// reject logs the failure to the activity trail and writes the error
// response. The log entry always lands before the response per the
// endpoint's error discipline.
func (h *WebhookHandler) reject(w http.ResponseWriter, status int, msg, format string, args ...any) {
	h.deps.RecordActivity(format, args...)
	writeError(w, status, msg)
}
