package seeder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/signature"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/pkg/logger"
)

// Run generates and submits all deliveries sequentially, then prints a
// summary. Sequential on purpose: the service serializes writes anyway and
// errors are easier to attribute.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "seeding webhook deliveries",
		logger.String("baseURL", config.BaseURL),
		logger.Int("profiles", config.Profiles),
		logger.Int("perEvent", config.PerEvent),
	)

	deliveries := Generate(config.Profiles, config.PerEvent, time.Now())
	stats.Generated = len(deliveries)

	client := &http.Client{Timeout: config.Timeout}
	secret := []byte(config.Secret)

	for _, d := range deliveries {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("seeding interrupted: %w", err)
		}
		stats.Submitted++
		if err := submit(ctx, client, config, secret, d); err != nil {
			stats.Failed++
			logger.Get().Warn(ctx, "delivery failed",
				logger.String("externalID", d.ExternalID),
				logger.String("eventType", d.EventType),
				logger.Error(err),
			)
			continue
		}
		stats.Successful++
		if config.Verbose {
			logger.Get().Info(ctx, "delivery accepted",
				logger.String("externalID", d.ExternalID),
				logger.String("eventType", d.EventType),
			)
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	logger.Get().Info(ctx, "seeding finished",
		logger.Int("generated", stats.Generated),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, nil
}

// submit sends one signed delivery. With no secret configured the bypass
// header is used instead, which only works against a service started with
// webhook_allow_bypass.
func submit(ctx context.Context, client *http.Client, config *Config, secret []byte, d Delivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.BaseURL+"/webhook", bytes.NewReader(d.Body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-External-Id", d.ExternalID)
	req.Header.Set("X-Event-Type", d.EventType)
	if len(secret) > 0 {
		req.Header.Set("X-Signature", signature.Compute(secret, d.Body))
	} else {
		req.Header.Set("X-Bypass-Signature", "seeder")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
