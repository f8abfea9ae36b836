// Package event defines the webhook event union and the record mutations
// each event applies. One concrete type exists per upstream event kind so
// dispatch is exhaustive rather than a stringly-typed fallthrough.
package event

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
)

// BiomarkerCap bounds the retained readings per biomarker. Enforcement is
// synchronous with the append; oldest readings are evicted first.
const BiomarkerCap = 100

// Kind discriminates the event union.
type Kind string

// Known event kinds. The upstream platform suffixes these with
// "IntegrationEvent" on the wire; Parse accepts both spellings.
const (
	KindScoreCreated        Kind = "ScoreCreated"
	KindFactorsCreated      Kind = "FactorsCreated"
	KindBiomarkerCreated    Kind = "BiomarkerCreated"
	KindProfileCreated      Kind = "ProfileCreated"
	KindArchetypeIdentified Kind = "ArchetypeIdentified"
	KindDataLogReceived     Kind = "DataLogReceived"
	KindUnknown             Kind = "Unknown"
)

// Event is one parsed webhook delivery payload.
type Event interface {
	// Kind identifies the concrete variant.
	Kind() Kind

	// Mutates reports whether applying this event changes the record.
	// Acknowledgment-only events leave the record (and its lastUpdated)
	// untouched.
	Mutates() bool

	// Apply merges the event into rec. Callers pass the delivery time,
	// used when the payload carries no timestamp of its own.
	Apply(rec *model.WellnessRecord, now time.Time)
}

// ScoreCreated upserts one score type. Last write wins per type.
type ScoreCreated struct {
	Type          string     `json:"type"`
	Score         float64    `json:"score"`
	State         string     `json:"state"`
	ScoreDateTime *time.Time `json:"scoreDateTime"`
}

func (e *ScoreCreated) Kind() Kind    { return KindScoreCreated }
func (e *ScoreCreated) Mutates() bool { return true }

func (e *ScoreCreated) Apply(rec *model.WellnessRecord, now time.Time) {
	at := now
	if e.ScoreDateTime != nil {
		at = *e.ScoreDateTime
	}
	rec.Scores[NormalizeScoreType(e.Type)] = model.Score{
		Value:     e.Score,
		State:     e.State,
		UpdatedAt: at,
	}
}

// FactorsCreated replaces the factor breakdown for one score type wholesale.
type FactorsCreated struct {
	ScoreType string          `json:"scoreType"`
	Factors   []FactorPayload `json:"factors"`
}

// FactorPayload mirrors one factor entry on the wire; Unit is optional.
type FactorPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (e *FactorsCreated) Kind() Kind    { return KindFactorsCreated }
func (e *FactorsCreated) Mutates() bool { return true }

func (e *FactorsCreated) Apply(rec *model.WellnessRecord, _ time.Time) {
	factors := make([]model.Factor, 0, len(e.Factors))
	for _, f := range e.Factors {
		unit := f.Unit
		if unit == "" {
			unit = "score"
		}
		factors = append(factors, model.Factor{Name: f.Name, Value: f.Value, Unit: unit})
	}
	rec.Factors[NormalizeScoreType(e.ScoreType)] = factors
}

// BiomarkerCreated appends one reading, evicting from the front past the cap.
type BiomarkerCreated struct {
	Biomarker           string     `json:"biomarker"`
	Value               float64    `json:"value"`
	Unit                string     `json:"unit"`
	MeasurementDateTime *time.Time `json:"measurementDateTime"`
}

func (e *BiomarkerCreated) Kind() Kind    { return KindBiomarkerCreated }
func (e *BiomarkerCreated) Mutates() bool { return true }

func (e *BiomarkerCreated) Apply(rec *model.WellnessRecord, now time.Time) {
	at := now
	if e.MeasurementDateTime != nil {
		at = *e.MeasurementDateTime
	}
	readings := append(rec.Biomarkers[e.Biomarker], model.BiomarkerReading{
		Value:     e.Value,
		Unit:      e.Unit,
		Timestamp: at,
	})
	if over := len(readings) - BiomarkerCap; over > 0 {
		readings = readings[over:]
	}
	rec.Biomarkers[e.Biomarker] = readings
}

// ProfileCreated merges demographics shallowly; new keys overwrite.
type ProfileCreated struct {
	Demographics map[string]any `json:"demographics"`
}

func (e *ProfileCreated) Kind() Kind    { return KindProfileCreated }
func (e *ProfileCreated) Mutates() bool { return true }

func (e *ProfileCreated) Apply(rec *model.WellnessRecord, _ time.Time) {
	if len(e.Demographics) == 0 {
		return
	}
	if rec.Demographics == nil {
		rec.Demographics = make(map[string]any, len(e.Demographics))
	}
	for k, v := range e.Demographics {
		rec.Demographics[k] = v
	}
}

// ArchetypeIdentified upserts one archetype classification.
type ArchetypeIdentified struct {
	ArchetypeType  string `json:"archetypeType"`
	ArchetypeValue string `json:"archetypeValue"`
}

func (e *ArchetypeIdentified) Kind() Kind    { return KindArchetypeIdentified }
func (e *ArchetypeIdentified) Mutates() bool { return true }

func (e *ArchetypeIdentified) Apply(rec *model.WellnessRecord, _ time.Time) {
	rec.Archetypes[e.ArchetypeType] = e.ArchetypeValue
}

// DataLogReceived is acknowledgment-only; the upstream just wants a 2xx.
type DataLogReceived struct{}

func (e *DataLogReceived) Kind() Kind                                 { return KindDataLogReceived }
func (e *DataLogReceived) Mutates() bool                              { return false }
func (e *DataLogReceived) Apply(_ *model.WellnessRecord, _ time.Time) {}

// Unknown carries an unrecognized event type. It is acknowledged and logged
// but never mutates; the provider must not be made to retry on
// classification gaps.
type Unknown struct {
	EventType string
	Payload   json.RawMessage
}

func (e *Unknown) Kind() Kind                                 { return KindUnknown }
func (e *Unknown) Mutates() bool                              { return false }
func (e *Unknown) Apply(_ *model.WellnessRecord, _ time.Time) {}

// Parse decodes payload into the variant named by eventType. A trailing
// "IntegrationEvent" suffix is accepted and ignored. Unrecognized types
// return an Unknown event, never an error; a decode failure on a
// recognized type is a malformed-body error.
func Parse(eventType string, payload []byte) (Event, error) {
	var evt Event
	switch Kind(strings.TrimSuffix(strings.TrimSpace(eventType), "IntegrationEvent")) {
	case KindScoreCreated:
		evt = &ScoreCreated{}
	case KindFactorsCreated:
		evt = &FactorsCreated{}
	case KindBiomarkerCreated:
		evt = &BiomarkerCreated{}
	case KindProfileCreated:
		evt = &ProfileCreated{}
	case KindArchetypeIdentified:
		evt = &ArchetypeIdentified{}
	case KindDataLogReceived:
		evt = &DataLogReceived{}
	default:
		return &Unknown{EventType: eventType, Payload: append([]byte(nil), payload...)}, nil
	}
	if err := json.Unmarshal(payload, evt); err != nil {
		return nil, WrapMalformed(err)
	}
	return evt, nil
}

// NormalizeScoreType maps the provider's snake_case score names to the
// canonical camelCase keys, e.g. "mental_wellbeing" -> "mentalWellbeing".
// Already-canonical input passes through unchanged, so the function is
// idempotent.
func NormalizeScoreType(scoreType string) string {
	if !strings.Contains(scoreType, "_") {
		return scoreType
	}
	var b strings.Builder
	b.Grow(len(scoreType))
	upperNext := false
	for _, r := range scoreType {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteString(strings.ToUpper(string(r)))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
