// Package activity appends a line-oriented diagnostic trail of webhook
// deliveries and failures.
package activity

import "time"

// Option applies a configuration option to the Logger.
type Option func(*Logger)

// WithBufferSize sets the bounded line buffer; lines past it are dropped.
func WithBufferSize(size int) Option {
	return func(l *Logger) {
		if size > 0 {
			l.bufferSize = size
		}
	}
}

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}
