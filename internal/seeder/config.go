// Package seeder fires synthetic signed webhook deliveries at a running
// service instance, exercising the full verify-merge-persist path from the
// outside.
package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Secret    string        // Shared HMAC secret; empty means use the bypass header
	Profiles  int           // Number of distinct external ids to seed
	PerEvent  int           // Deliveries per profile
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // Enable verbose logging
}

// Delivery is one webhook POST ready to send.
type Delivery struct {
	ExternalID string
	EventType  string
	Body       []byte
}

// Stats holds seeding run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Failed     int
	StartTime  time.Time
	Duration   time.Duration
}
