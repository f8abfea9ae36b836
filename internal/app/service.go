// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/adapters/activity"
	repository "github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/adapters/repository"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/demo"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/event"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/model"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/pkg/logger"
)

// Default service configuration constants.
const (
	defaultDataFile       = "data/wellness-records.json"
	defaultActivityFile   = "data/activity.log"
	defaultActivityBuffer = 1024
	defaultDemoProfileCnt = demo.DefaultCount
)

// Service implements the API dependencies for the webhook pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	activityLog *activity.Logger

	// Configuration
	dataFile       string
	activityFile   string
	activityBuffer int
	demoCount      int
	now            func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataFile sets the persisted record collection path.
func WithDataFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataFile = path
		}
	}
}

// WithActivityLogFile sets the append-only activity log path.
func WithActivityLogFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.activityFile = path
		}
	}
}

// WithActivityBufferSize bounds the activity line buffer.
func WithActivityBufferSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.activityBuffer = size
		}
	}
}

// WithDemoProfileCount sizes the synthetic population for demo reads.
func WithDemoProfileCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.demoCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore substitutes the record store. Intended for tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataFile:       defaultDataFile,
		activityFile:   defaultActivityFile,
		activityBuffer: defaultActivityBuffer,
		demoCount:      defaultDemoProfileCnt,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the store and the activity log.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	for _, path := range []string{s.dataFile, s.activityFile} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	if s.store == nil {
		s.store = repository.NewFileStore(s.dataFile)
	}

	actLog, err := activity.NewLogger(s.activityFile, activity.WithBufferSize(s.activityBuffer))
	if err != nil {
		return fmt.Errorf("start activity log: %w", err)
	}
	s.activityLog = actLog

	s.started = true
	s.logger.Info(ctx, "webhook service started",
		logger.String("dataFile", s.dataFile),
		logger.String("activityLog", s.activityFile),
	)
	return nil
}

// Stop flushes and closes the activity log.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.activityLog != nil {
		_ = s.activityLog.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "webhook service stopped")
}

// ApplyEvent merges evt into the record for externalID under the store's
// exclusive section. Acknowledgment-only events never touch the store, so
// the record's lastUpdated stays put.
func (s *Service) ApplyEvent(ctx context.Context, externalID string, evt event.Event) (int, error) {
	if !evt.Mutates() {
		return 0, nil
	}

	now := s.now()
	err := s.store.Update(ctx, externalID, func(rec *model.WellnessRecord) error {
		evt.Apply(rec, now)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("apply %s event: %w", evt.Kind(), err)
	}

	s.logger.Debug(ctx, "event applied",
		logger.String("externalID", externalID),
		logger.String("kind", string(evt.Kind())),
	)
	return 1, nil
}

// Profiles returns all persisted records plus their maximum lastUpdated.
func (s *Service) Profiles(ctx context.Context) ([]model.WellnessRecord, time.Time, error) {
	return s.store.List(ctx)
}

// DemoProfiles returns a freshly generated synthetic population.
func (s *Service) DemoProfiles(_ context.Context) []model.WellnessRecord {
	return demo.Generate(s.demoCount, s.now())
}

// RecordActivity appends a best-effort diagnostic line. Safe to call
// before Start or after Stop; lines are then silently discarded.
func (s *Service) RecordActivity(format string, args ...any) {
	s.mu.RLock()
	actLog := s.activityLog
	s.mu.RUnlock()

	if actLog != nil {
		actLog.Record(format, args...)
	}
}

// GetStats returns service statistics for monitoring. The store count does
// disk I/O, so it runs after the service lock is released.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	store := s.store
	dataFile := s.dataFile
	demoCount := s.demoCount
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          started,
		"dataFile":         dataFile,
		"demoProfileCount": demoCount,
	}
	if started {
		stats["totalProfiles"] = store.Count(context.Background())
	}
	return stats
}
