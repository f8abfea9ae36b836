// Package repository defines the wellness record store interface and errors.
package repository

import "time"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithClock overrides the time source used for createdAt/lastUpdated.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}
