// Package model contains domain models passed between layers.
package model

import "time"

// Score names used by the upstream platform, in their canonical camelCase form.
const (
	ScoreSleep           = "sleep"
	ScoreActivity        = "activity"
	ScoreMentalWellbeing = "mentalWellbeing"
	ScoreReadiness       = "readiness"
	ScoreWellbeing       = "wellbeing"
)

// Score is the latest value for a single score type. Each type is
// independently overwritten; there is no field-level merging.
type Score struct {
	Value     float64   `json:"value"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Factor is one component of a composite score's breakdown.
type Factor struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// BiomarkerReading is a single timestamped physiological measurement.
type BiomarkerReading struct {
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// WellnessRecord is the per-profile aggregate the webhook pipeline maintains.
// ExternalID is the caller-supplied primary key; ProfileID is derived from it
// and stable across restarts.
type WellnessRecord struct {
	ExternalID   string                        `json:"externalId"`
	ProfileID    string                        `json:"profileId"`
	Department   string                        `json:"department,omitempty"`
	Scores       map[string]Score              `json:"scores"`
	Factors      map[string][]Factor           `json:"factors"`
	Biomarkers   map[string][]BiomarkerReading `json:"biomarkers"`
	Archetypes   map[string]string             `json:"archetypes"`
	Demographics map[string]any                `json:"demographics,omitempty"`
	CreatedAt    time.Time                     `json:"createdAt"`
	LastUpdated  time.Time                     `json:"lastUpdated"`
}

// NewWellnessRecord returns a record for a first-seen external id with all
// sub-maps allocated, so event mutations never have to nil-check them.
func NewWellnessRecord(externalID, profileID string, now time.Time) *WellnessRecord {
	return &WellnessRecord{
		ExternalID:  externalID,
		ProfileID:   profileID,
		Scores:      make(map[string]Score),
		Factors:     make(map[string][]Factor),
		Biomarkers:  make(map[string][]BiomarkerReading),
		Archetypes:  make(map[string]string),
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// EnsureMaps allocates any sub-map that deserialized as nil. Records loaded
// from an older on-disk document may be missing maps added later.
func (r *WellnessRecord) EnsureMaps() {
	if r.Scores == nil {
		r.Scores = make(map[string]Score)
	}
	if r.Factors == nil {
		r.Factors = make(map[string][]Factor)
	}
	if r.Biomarkers == nil {
		r.Biomarkers = make(map[string][]BiomarkerReading)
	}
	if r.Archetypes == nil {
		r.Archetypes = make(map[string]string)
	}
}
