// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataFile is the path of the persisted record collection (one JSON
	// document holding every profile).
	DataFile string `koanf:"data_file"`

	// ActivityLogFile is the append-only diagnostic log path.
	ActivityLogFile string `koanf:"activity_log_file"`

	// ActivityBufferSize bounds the in-memory activity line buffer.
	ActivityBufferSize int `koanf:"activity_buffer_size"`

	// WebhookSecret is the shared HMAC secret for inbound deliveries.
	// Leaving it empty makes every signed delivery fail with a 500; the
	// service logs a warning at startup rather than refusing to boot so
	// demo mode still works.
	WebhookSecret string `koanf:"webhook_secret"`

	// WebhookAllowBypass honors the signature bypass header when true.
	// Must stay false in production.
	WebhookAllowBypass bool `koanf:"webhook_allow_bypass"`

	// DemoProfileCount sizes the synthetic population for mode=demo.
	DemoProfileCount int `koanf:"demo_profile_count"`

	// SahhaClientID and SahhaClientSecret are the outbound API
	// credentials. Both empty disables the outbound client.
	SahhaClientID     string `koanf:"client_id"`
	SahhaClientSecret string `koanf:"client_secret"`

	// SahhaAPIBase overrides the outbound API base URL.
	SahhaAPIBase string `koanf:"api_base"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		DataFile:           "data/wellness-records.json",
		ActivityLogFile:    "data/activity.log",
		ActivityBufferSize: 1024,
		DemoProfileCount:   57,
	}
}
