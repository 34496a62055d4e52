// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the chat
// backend service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeBadStatus
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCanceled    = &ClientError{Type: ErrTypeCanceled, Message: "request canceled"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL of the backend service (default: http://127.0.0.1:8000)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration

	// MaxRetries for whole-response requests that fail before any reply is
	// observed. Zero disables retries; DefaultConfig sets 2. Streaming
	// requests are never retried.
	MaxRetries int

	// UserAgent sent with every request (default: "chatterm")
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    "http://127.0.0.1:8000",
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		UserAgent:  "chatterm",
	}
}

// retryBackoff is the base delay between whole-response retry attempts.
const retryBackoff = 250 * time.Millisecond

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the chat backend.
// It provides methods for reachability checks and chat operations,
// both whole-response and streaming.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient()
//	if err := client.Ping(ctx); err != nil {
//	    log.Fatal("backend not available:", err)
//	}
//	reply, err := client.Chat(ctx, "hello")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.UserAgent == "" {
		config.UserAgent = "chatterm"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// REACHABILITY
// =============================================================================

// Ping verifies that the backend is reachable.
// Any HTTP response counts as reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	drainAndClose(resp.Body)

	return nil
}

// =============================================================================
// WHOLE-RESPONSE CHAT
// =============================================================================

// Chat sends a message to /api/chat and returns the complete reply.
// The reply is only ever observed as a single string; callers never see a
// partial response. Transport failures are retried up to MaxRetries times
// with a linear backoff; timeouts, cancellations, and HTTP errors are not.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", classifyTransportError(ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		reply, err := c.chatOnce(ctx, body)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		// Only connection failures are worth retrying.
		if !IsUnreachable(err) {
			return "", err
		}
	}

	return "", lastErr
}

// chatOnce performs a single whole-response request attempt.
func (c *Client) chatOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("chat request failed", resp)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return result.Reply, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamCallback is called for each chunk of reply text as it arrives.
// Returning a non-nil error aborts the stream and is returned from ChatStream.
type StreamCallback func(chunk string) error

// ChatStream sends a message to /api/chat-stream and calls the callback for
// each chunk of the plain-text reply body, in arrival order.
// Returns when the body closes, the context is cancelled, or the callback
// reports an error. An empty body yields zero callbacks and a nil error.
func (c *Client) ChatStream(ctx context.Context, message string, callback func(chunk string) error) error {
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming (stream lifetime is bounded
	// by the context, not a fixed deadline)
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat-stream", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := streamClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("stream request failed", resp)
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// StreamEvent is a single delivery from ChatStreamChan: either a chunk of
// reply text, or a terminal event with Done set (and Err on failure).
type StreamEvent struct {
	Chunk string
	Done  bool
	Err   error
}

// ChatStreamChan sends a streaming chat request and returns a channel of
// events. The channel always ends with a Done event and is then closed.
func (c *Client) ChatStreamChan(ctx context.Context, message string) <-chan StreamEvent {
	ch := make(chan StreamEvent)

	go func() {
		defer close(ch)

		err := c.ChatStream(ctx, message, func(chunk string) error {
			select {
			case ch <- StreamEvent{Chunk: chunk}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		select {
		case ch <- StreamEvent{Done: true, Err: err}:
		case <-ctx.Done():
		}
	}()

	return ch
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// IsUnreachable checks if an error indicates the backend could not be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error came from context cancellation.
func IsCanceled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCanceled
	}
	return errors.Is(err, context.Canceled)
}

// classifyTransportError maps a transport-level failure to a ClientError.
func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	default:
		return &ClientError{Type: ErrTypeUnreachable, Message: "backend is not reachable", Cause: err}
	}
}

// statusError builds a ClientError for a non-200 response, including the
// start of the body when the server sent one.
func statusError(prefix string, resp *http.Response) error {
	detail := resp.Status
	if snippet, err := io.ReadAll(io.LimitReader(resp.Body, 256)); err == nil && len(snippet) > 0 {
		detail = resp.Status + ": " + string(snippet)
	}
	return &ClientError{Type: ErrTypeBadStatus, Message: prefix + ": " + detail}
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
