// Package sahha is a thin client for the upstream wellness platform's REST
// API. The client object owns its account token and expiry; nothing lives
// in package-level state, so callers construct one client per process and
// pass it around.
package sahha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Default client configuration constants.
const (
	defaultBaseURL    = "https://api.sahha.ai/api/v1"
	defaultTimeout    = 15 * time.Second
	tokenExpirySlack  = 30 * time.Second
	defaultExpiresIn  = 3600
	maxErrorBodyBytes = 2048
)

// Client calls the platform API with lazily refreshed account credentials.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient constructs a client for the given credentials.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      defaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a valid account token, refreshing it through the
// client-credentials handshake when missing or near expiry.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(tokenExpirySlack).Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"clientId":     c.clientID,
		"clientSecret": c.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/account/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var tok struct {
		AccountToken string `json:"accountToken"`
		ExpiresIn    int    `json:"expiresIn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccountToken == "" {
		return "", ErrNoToken
	}
	if tok.ExpiresIn <= 0 {
		tok.ExpiresIn = defaultExpiresIn
	}

	c.token = tok.AccountToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// ProfileScores fetches the latest score set the platform holds for one
// external id. The result is returned undecoded; callers pick the fields
// they need.
func (c *Client) ProfileScores(ctx context.Context, externalID string) (json.RawMessage, error) {
	return c.get(ctx, "/profile/score/"+externalID)
}

// OrganizationMetrics fetches aggregate metrics for the whole organization.
func (c *Client) OrganizationMetrics(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/organization/metrics")
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "account "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return json.RawMessage(data), nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return fmt.Errorf("%w: status %d: %s", ErrAPIStatus, resp.StatusCode, bytes.TrimSpace(body))
}
