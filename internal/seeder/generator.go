package seeder

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// Score types as the provider spells them on the wire (snake_case; the
// service normalizes them).
var wireScoreTypes = []string{"sleep", "activity", "mental_wellbeing", "readiness", "wellbeing"}

var biomarkers = []string{"heart_rate", "heart_rate_variability", "respiratory_rate", "steps"}

var archetypes = map[string][]string{
	"sleep_pattern":    {"early_bird", "night_owl", "variable_sleeper"},
	"activity_pattern": {"consistent_mover", "weekend_warrior", "sedentary"},
}

// Generate produces deterministic deliveries for profiles x perEvent.
// Event types rotate so every mutation path gets traffic.
func Generate(profiles, perEvent int, now time.Time) []Delivery {
	rng := rand.New(rand.NewSource(now.UnixNano()))
	deliveries := make([]Delivery, 0, profiles*perEvent)
	for p := 0; p < profiles; p++ {
		externalID := fmt.Sprintf("seed-%04d", p+1)
		for e := 0; e < perEvent; e++ {
			deliveries = append(deliveries, makeDelivery(rng, externalID, e, now))
		}
	}
	return deliveries
}

func makeDelivery(rng *rand.Rand, externalID string, seq int, now time.Time) Delivery {
	switch seq % 5 {
	case 0:
		return delivery(externalID, "ScoreCreatedIntegrationEvent", map[string]any{
			"type":          wireScoreTypes[rng.Intn(len(wireScoreTypes))],
			"score":         0.3 + rng.Float64()*0.65,
			"state":         "medium",
			"scoreDateTime": now.Format(time.RFC3339),
		})
	case 1:
		return delivery(externalID, "BiomarkerCreatedIntegrationEvent", map[string]any{
			"biomarker":           biomarkers[rng.Intn(len(biomarkers))],
			"value":               40 + rng.Float64()*80,
			"unit":                "count",
			"measurementDateTime": now.Format(time.RFC3339),
		})
	case 2:
		return delivery(externalID, "FactorsCreatedIntegrationEvent", map[string]any{
			"scoreType": "sleep",
			"factors": []map[string]any{
				{"name": "sleep_duration", "value": 6.5 + rng.Float64()*2, "unit": "hour"},
				{"name": "sleep_regularity", "value": rng.Float64()},
			},
		})
	case 3:
		archetypeType := "sleep_pattern"
		if rng.Intn(2) == 1 {
			archetypeType = "activity_pattern"
		}
		values := archetypes[archetypeType]
		return delivery(externalID, "ArchetypeIdentifiedIntegrationEvent", map[string]any{
			"archetypeType":  archetypeType,
			"archetypeValue": values[rng.Intn(len(values))],
		})
	default:
		return delivery(externalID, "ProfileCreatedIntegrationEvent", map[string]any{
			"demographics": map[string]any{
				"ageRange": "25-34",
				"gender":   "unspecified",
			},
		})
	}
}

func delivery(externalID, eventType string, payload map[string]any) Delivery {
	body, _ := json.Marshal(payload)
	return Delivery{ExternalID: externalID, EventType: eventType, Body: body}
}
