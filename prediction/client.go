package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrEmptySnippet is returned before any request when there is no code to
// classify. Its text is shown to the user as is.
var ErrEmptySnippet = errors.New("Please enter a snippet of your code first.")

const (
	predictPath  = "/predict_v2"
	maxErrorBody = 512
)

// APIError represents a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Predictor is what callers need from a Client.
type Predictor interface {
	Predict(ctx context.Context, snippet string) (*Result, error)
}

// Client calls the classification service. It never retries: a failed
// prediction is reported once and the user resubmits.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

var _ Predictor = (*Client)(nil)

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Predict classifies snippet. Non-2xx responses are returned as *APIError.
func (c *Client) Predict(ctx context.Context, snippet string) (*Result, error) {
	if strings.TrimSpace(snippet) == "" {
		return nil, ErrEmptySnippet
	}
	query := url.Values{"code_snippet": {snippet}}
	fullURL := c.baseURL + predictPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("prediction: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction: calling %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("prediction: reading response: %w", err)
	}
	c.log.Debug("prediction response", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if len(bodyStr) > maxErrorBody {
			bodyStr = bodyStr[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("prediction: decoding response: %w", err)
	}
	return &result, nil
}
