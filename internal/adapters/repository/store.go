// Package repository defines the wellness record store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
)

// Store provides read/write access to the persisted record collection.
type Store interface {
	// Update runs a load-mutate-persist cycle for the record keyed by
	// externalID, creating it with defaults on first sight. The whole
	// cycle is globally serialized: no two Update calls overlap their
	// load/persist window, regardless of key, because the durable form
	// is a single document holding every profile.
	//
	// A mutation error aborts before anything is written. A persist
	// error wraps ErrPersist so callers can tell the durable write did
	// not happen.
	Update(ctx context.Context, externalID string, mutate func(rec *model.WellnessRecord) error) error

	// List returns every record plus the maximum lastUpdated across
	// them. An absent document reads as an empty collection.
	List(ctx context.Context) ([]model.WellnessRecord, time.Time, error)

	// Count returns the number of records currently persisted.
	Count(ctx context.Context) int
}
