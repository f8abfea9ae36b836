// Package activity appends a line-oriented diagnostic trail of webhook
// deliveries and failures.
//
// The log is strictly best-effort: Record never blocks the request path.
// Lines feed a bounded channel drained by a single writer goroutine; when
// the channel is full the line is dropped and counted, and writer I/O
// errors are swallowed.
package activity

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/pkg/metrics"
)

// Default logger configuration constants.
const (
	defaultBufferSize = 1024
)

// Logger is the append-only activity sink.
type Logger struct {
	file       *os.File
	lines      chan string
	done       chan struct{}
	bufferSize int
	now        func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewLogger opens (or creates) the log file at path in append mode and
// starts the writer goroutine.
func NewLogger(path string, opts ...Option) (*Logger, error) {
	l := &Logger{
		bufferSize: defaultBufferSize,
		now:        time.Now,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	l.file = f
	l.lines = make(chan string, l.bufferSize)

	go l.run()
	return l, nil
}

// Record queues one formatted line, prefixed with an ISO-8601 timestamp.
// It never blocks: a full buffer drops the line and increments a counter.
//
// The mutex is held across the send so a concurrent Close cannot close the
// channel between the closed check and the send. The send itself never
// blocks, so the hold is brief.
func (l *Logger) Record(format string, args ...any) {
	line := l.now().UTC().Format(time.RFC3339) + " | " + fmt.Sprintf(format, args...) + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.lines <- line:
	default:
		metrics.RecordActivityDrop()
	}
}

// Close stops accepting lines, flushes what is buffered, and closes the file.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.lines)
	<-l.done
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close activity log: %w", err)
	}
	return nil
}

// run drains the channel until Close. Write errors are deliberately
// discarded; the activity trail must never escalate to the caller.
func (l *Logger) run() {
	defer close(l.done)
	for line := range l.lines {
		_, _ = l.file.WriteString(line)
	}
}
