package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/seeder"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/pkg/logger"
)

// Default configuration constants.
const (
	defaultProfiles    = 25
	defaultPerEvent    = 10
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		secret   = flag.String("secret", "", "Shared webhook secret; empty uses the bypass header")
		profiles = flag.Int("profiles", defaultProfiles, "Number of distinct external ids to seed")
		perEvent = flag.Int("events", defaultPerEvent, "Deliveries per profile")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Log every accepted delivery")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	config := &seeder.Config{
		BaseURL:  *baseURL,
		Secret:   *secret,
		Profiles: *profiles,
		PerEvent: *perEvent,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if _, err := seeder.Run(ctx, config); err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
