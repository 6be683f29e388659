// Package mealapi is the HTTP client for the remote meal suggestion service.
//
// The service exposes a single endpoint, POST {base}/chat, which takes the
// user's ingredient list and answers with one generated meal. Every way the
// call can fail (transport, status, payload) is reported as an error that
// matches ErrChat, so callers can treat them uniformly.
package mealapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ChatPath is appended to the configured base URL.
const ChatPath = "/chat"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// ChatRequest is the JSON body sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// Suggestion is a successfully parsed chat response.
type Suggestion struct {
	MealName    string `json:"meal_name"`
	Description string `json:"description"`
	// IngredientsUsed is kept for consumers that need it; the chat view
	// does not render it.
	IngredientsUsed []string `json:"ingredients_used"`
}

// Text returns the message shown to the user: the meal name, a blank line,
// then the description.
func (s Suggestion) Text() string {
	return s.MealName + "\n\n" + s.Description
}

// wireSuggestion detects missing fields during decode.
type wireSuggestion struct {
	MealName        *string  `json:"meal_name"`
	Description     *string  `json:"description"`
	IngredientsUsed []string `json:"ingredients_used"`
}

// Client talks to the chat endpoint.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each Chat call. Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the service rooted at baseURL. An empty
// baseURL is accepted; requests then target the relative path "/chat" and
// fail as transport errors.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: newHTTPClient(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Endpoint returns the full URL of the chat endpoint.
func (c *Client) Endpoint() string {
	return c.baseURL + ChatPath
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Chat sends message to the chat endpoint and parses the suggestion.
func (c *Client) Chat(ctx context.Context, message string) (Suggestion, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("chat request failed",
			zap.String("url", req.URL.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Suggestion{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	c.logger.Debug("chat response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Suggestion{}, &StatusError{Code: resp.StatusCode, Body: snippet(data)}
	}

	return decodeSuggestion(data)
}

func decodeSuggestion(data []byte) (Suggestion, error) {
	var w wireSuggestion
	if err := json.Unmarshal(data, &w); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrPayload, err)
	}
	if w.MealName == nil {
		return Suggestion{}, fmt.Errorf("%w: missing meal_name", ErrPayload)
	}
	if w.Description == nil {
		return Suggestion{}, fmt.Errorf("%w: missing description", ErrPayload)
	}
	return Suggestion{
		MealName:        *w.MealName,
		Description:     *w.Description,
		IngredientsUsed: w.IngredientsUsed,
	}, nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
