package hypixel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.hypixel.net"

var (
	// ErrPlayerNotFound covers unknown UUIDs and unsuccessful payloads.
	ErrPlayerNotFound = errors.New("hypixel: player not found")
	// ErrUpstreamFailure covers non-2xx responses and malformed bodies.
	// The client never retries; that is the caller's call.
	ErrUpstreamFailure = errors.New("hypixel: upstream request failed")
)

type ClientConfig struct {
	APIKey            string
	RequestsPerMinute int
	BaseURL           string        // defaults to the public API
	Timeout           time.Duration // per-request timeout, defaults to 10s
}

// Client wraps the Hypixel API behind the token-bucket limiter. Every
// fetch consumes one token before going out; rate-limit exhaustion shows
// up as blocking in Acquire, never as an error.
type Client struct {
	httpClient *http.Client
	limiter    *TokenBucket
	apiKey     string
	baseURL    string
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("hypixel: API key is required")
	}
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("hypixel: invalid request limit %d", cfg.RequestsPerMinute)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    NewTokenBucket(cfg.RequestsPerMinute),
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
	}, nil
}

// FetchProfiles pulls the raw profile snapshot for one player UUID.
func (c *Client) FetchProfiles(ctx context.Context, uuid string) (*RawProfilesResponse, error) {
	var data RawProfilesResponse
	if err := c.get(ctx, fmt.Sprintf("%s/skyblock/profiles?uuid=%s", c.baseURL, uuid), &data); err != nil {
		return nil, err
	}
	if !data.Success {
		return nil, ErrPlayerNotFound
	}
	return &data, nil
}

// FetchPlayer pulls the raw player record for one UUID.
func (c *Client) FetchPlayer(ctx context.Context, uuid string) (*RawPlayerResponse, error) {
	var data RawPlayerResponse
	if err := c.get(ctx, fmt.Sprintf("%s/player?uuid=%s", c.baseURL, uuid), &data); err != nil {
		return nil, err
	}
	if !data.Success || data.Player == nil {
		return nil, ErrPlayerNotFound
	}
	return &data, nil
}

func (c *Client) get(ctx context.Context, url string, dst interface{}) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	req.Header.Set("API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrPlayerNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrUpstreamFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	return nil
}

// Close releases the limiter's refill goroutine.
func (c *Client) Close() {
	c.limiter.Close()
}
