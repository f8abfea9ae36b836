package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/pkg/metrics"
)

// collection is the durable layout: one JSON document keyed by external id.
type collection map[string]model.WellnessRecord

// FileStore persists the full record collection as a single JSON document.
//
// A single mutex covers the entire load-mutate-persist window. The
// granularity is deliberately coarse: the durable form is one document, so
// per-key locking would still lose updates to concurrent full-document
// rewrites. The mutex is released via defer, so a failing mutation or
// persist never wedges later deliveries.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a store backed by the JSON document at path. The
// document is created on first persist; a missing file reads as empty.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update implements Store.
func (s *FileStore) Update(ctx context.Context, externalID string, mutate func(rec *model.WellnessRecord) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update aborted: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	rec, ok := records[externalID]
	if !ok {
		rec = *model.NewWellnessRecord(externalID, model.DeriveProfileID(externalID), s.now())
	}
	rec.EnsureMaps()

	if err := mutate(&rec); err != nil {
		return fmt.Errorf("mutate record %q: %w", externalID, err)
	}
	rec.LastUpdated = s.now()
	records[externalID] = rec

	start := time.Now()
	if err := s.persist(records); err != nil {
		metrics.RecordPersistError()
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	metrics.RecordPersistLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateProfilesTotal(len(records))
	return nil
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]model.WellnessRecord, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("list aborted: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, time.Time{}, err
	}

	out := make([]model.WellnessRecord, 0, len(records))
	var last time.Time
	for _, rec := range records {
		if rec.LastUpdated.After(last) {
			last = rec.LastUpdated
		}
		out = append(out, rec)
	}
	return out, last, nil
}

// Count implements Store.
func (s *FileStore) Count(ctx context.Context) int {
	records, _, err := s.List(ctx)
	if err != nil {
		return 0
	}
	return len(records)
}

// load reads the full collection; an absent document is an empty collection.
func (s *FileStore) load() (collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(collection), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if len(data) == 0 {
		return make(collection), nil
	}
	var records collection
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return records, nil
}

// persist writes the full collection through a temp file and rename, so a
// reader can never observe a partially-written document.
func (s *FileStore) persist(records collection) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
