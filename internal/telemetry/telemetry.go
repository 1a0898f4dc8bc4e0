package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Client posts capture events to a PostHog-compatible endpoint. An
// unconfigured client (empty API key) only logs at debug level, so
// callers never need to nil-check.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(apiKey, baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "https://us.i.posthog.com"
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type captureEvent struct {
	APIKey     string         `json:"api_key"`
	Event      string         `json:"event"`
	DistinctID string         `json:"distinct_id"`
	Properties map[string]any `json:"properties"`
	Timestamp  string         `json:"timestamp"`
}

// Capture sends one event. Delivery is fire-and-forget: the HTTP call
// runs on its own goroutine and failures are logged, never returned,
// so diagnostics can't disturb the request path they describe.
func (c *Client) Capture(event string, props map[string]any) {
	if !c.Configured() {
		if c.logger != nil {
			c.logger.Debug("telemetry event", "event", event, "props", props)
		}
		return
	}

	payload := captureEvent{
		APIKey:     c.apiKey,
		Event:      event,
		DistinctID: "ladle-server",
		Properties: props,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	go c.send(payload)
}

func (c *Client) send(payload captureEvent) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.logError("marshal event", err)
		return
	}

	req, err := http.NewRequest("POST", c.baseURL+"/capture/", bytes.NewReader(body))
	if err != nil {
		c.logError("create request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logError("send event", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("telemetry rejected", "status", resp.StatusCode)
		}
	}
}

func (c *Client) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn("telemetry: "+msg, "error", err)
	}
}
