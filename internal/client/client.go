// Package client talks to a running calculator server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/trio-ev/internal/health"
	"github.com/yourusername/trio-ev/internal/models"
)

// Config holds configuration for the client
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
}

// DefaultConfig returns recommended defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		RateLimit:    10.0,
	}
}

// Client is a rate-limited, retrying client for the calculator's HTTP endpoints
type Client struct {
	baseURL string
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

// New creates a new client. A nil logger silences retry logging.
func New(cfg Config, log *logrus.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy()
	if log != nil {
		retryClient.Logger = log.WithField("component", "client")
	} else {
		retryClient.Logger = nil
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

// Health fetches /health.
func (c *Client) Health(ctx context.Context) (*health.HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var out health.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &out, nil
}

// Ready fetches /ready. A not-ready server is reported in the response, not as an error.
func (c *Client) Ready(ctx context.Context) (*health.ReadyResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/ready", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, unexpectedStatus(resp)
	}

	var out health.ReadyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ready response: %w", err)
	}
	return &out, nil
}

// EvaluateRequest is the JSON body accepted by /api/evaluate.
type EvaluateRequest struct {
	TotalHorses    int      `json:"total_horses"`
	ExcludedHorses []string `json:"excluded_horses"`
	Confidence     float64  `json:"confidence"` // percentage, 0-100
}

// Evaluate posts a selection to /api/evaluate.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (*models.Evaluation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/evaluate", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var out models.Evaluation
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}
	return &out, nil
}

// Close closes any resources held by the client
func (c *Client) Close() {
	c.client.HTTPClient.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func unexpectedStatus(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

// retryPolicy retries network errors, 429 and 5xx except 503, which /ready uses
// to report a server that is up but not ready.
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
			return true, nil
		default:
			return false, nil
		}
	}
}
