// Package demo generates a synthetic wellness population for dashboard
// walkthroughs. Generation is deterministic: the same count always yields
// the same records, and department assignment is a pure function of the
// generation index.
package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
)

// DefaultCount is the stock demo population size.
const DefaultCount = 57

// randomSeed keeps synthetic values reproducible across calls.
const randomSeed = 7

// band is a contiguous index range assigned to one department.
type band struct {
	upTo       int // exclusive upper index
	department string
}

// Departments are assigned by index into contiguous bands; indexes past the
// last band stay unassigned. At the default count of 57 this yields
// 20/11/11/9/6 profiles per band.
var bands = []band{
	{upTo: 20, department: "Engineering"},
	{upTo: 31, department: "Sales"},
	{upTo: 42, department: "Marketing"},
	{upTo: 51, department: "Operations"},
}

var scoreTypes = []string{
	model.ScoreSleep,
	model.ScoreActivity,
	model.ScoreMentalWellbeing,
	model.ScoreReadiness,
	model.ScoreWellbeing,
}

// DepartmentFor returns the department for generation index i, or "" when
// the index falls past the final band.
func DepartmentFor(i int) string {
	for _, b := range bands {
		if i < b.upTo {
			return b.department
		}
	}
	return ""
}

// Generate produces count synthetic records. Downstream formatting must
// carry the department field through verbatim; dropping it is a known
// regression class.
func Generate(count int, now time.Time) []model.WellnessRecord {
	if count <= 0 {
		count = DefaultCount
	}
	rng := rand.New(rand.NewSource(randomSeed))
	records := make([]model.WellnessRecord, 0, count)
	for i := 0; i < count; i++ {
		externalID := fmt.Sprintf("demo-%03d", i+1)
		rec := model.NewWellnessRecord(externalID, model.DeriveProfileID(externalID), now)
		rec.Department = DepartmentFor(i)
		for _, scoreType := range scoreTypes {
			value := 0.35 + rng.Float64()*0.6
			rec.Scores[scoreType] = model.Score{
				Value:     value,
				State:     stateFor(value),
				UpdatedAt: now,
			}
		}
		rec.Biomarkers["heart_rate"] = []model.BiomarkerReading{
			{Value: 52 + rng.Float64()*28, Unit: "bpm", Timestamp: now},
		}
		rec.Archetypes["sleep_pattern"] = archetypeFor(rng.Intn(3))
		records = append(records, *rec)
	}
	return records
}

func stateFor(value float64) string {
	switch {
	case value >= 0.8:
		return "high"
	case value >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

func archetypeFor(n int) string {
	switch n {
	case 0:
		return "early_bird"
	case 1:
		return "night_owl"
	default:
		return "variable_sleeper"
	}
}
