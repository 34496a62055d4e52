// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the chat
// backend service.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// TEST SERVER HELPERS
// =============================================================================

// chatServer returns a test server answering /api/chat with the given reply.
func chatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{Reply: reply})
	}))
}

// streamServer returns a test server answering /api/chat-stream with the
// given chunks, flushing after each one.
func streamServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat-stream" {
			http.NotFound(w, r)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("test server does not support flushing")
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, chunk := range chunks {
			w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))
}

func clientFor(srv *httptest.Server) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q, want 'http://127.0.0.1:8000'", cfg.BaseURL)
	}

	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
}

func TestNewClientWithConfigFillsDefaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.test"})

	cfg := client.GetConfig()
	if cfg.BaseURL != "http://example.test" {
		t.Errorf("BaseURL = %q, want 'http://example.test'", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		t.Error("Timeout should be filled with a default")
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent should be filled with a default")
	}
}

func TestNewClientWithNilConfig(t *testing.T) {
	client := NewClientWithConfig(nil)
	if client.GetConfig().BaseURL == "" {
		t.Error("nil config should produce defaults")
	}
}

// =============================================================================
// WHOLE-RESPONSE TESTS
// =============================================================================

func TestChatReturnsWholeReply(t *testing.T) {
	srv := chatServer(t, "Hello there!")
	defer srv.Close()

	reply, err := clientFor(srv).Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Hello there!" {
		t.Errorf("reply = %q, want 'Hello there!'", reply)
	}
}

func TestChatSendsMessageBody(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(ChatResponse{Reply: "ok"})
	}))
	defer srv.Close()

	if _, err := clientFor(srv).Chat(context.Background(), "what is up"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got.Message != "what is up" {
		t.Errorf("request message = %q, want 'what is up'", got.Message)
	}
}

func TestChatBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := clientFor(srv).Chat(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("error type = %T, want *ClientError", err)
	}
	if clientErr.Type != ErrTypeBadStatus {
		t.Errorf("Type = %v, want ErrTypeBadStatus", clientErr.Type)
	}
}

func TestChatUnreachable(t *testing.T) {
	// Port from a closed test server is guaranteed to refuse connections
	srv := chatServer(t, "")
	srv.Close()

	_, err := clientFor(srv).Chat(context.Background(), "hi")
	if !IsUnreachable(err) {
		t.Errorf("IsUnreachable(%v) = false, want true", err)
	}
}

func TestChatRetriesTransportFailures(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// Hijack and drop the connection to simulate a transient failure
			conn, _, err := w.(http.Hijacker).Hijack()
			if err != nil {
				t.Fatalf("hijack failed: %v", err)
			}
			conn.Close()
			return
		}
		json.NewEncoder(w).Encode(ChatResponse{Reply: "second time lucky"})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, MaxRetries: 2})
	reply, err := client.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "second time lucky" {
		t.Errorf("reply = %q, want 'second time lucky'", reply)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestChatDoesNotRetryBadStatus(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, MaxRetries: 3})
	if _, err := client.Chat(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (HTTP errors are not retried)", attempts)
	}
}

func TestChatInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := clientFor(srv).Chat(context.Background(), "hi")
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeInvalidResponse {
		t.Errorf("error = %v, want ErrTypeInvalidResponse", err)
	}
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestChatStreamDeliversChunksInOrder(t *testing.T) {
	srv := streamServer(t, []string{"He", "llo", " world"})
	defer srv.Close()

	var got []string
	err := clientFor(srv).ChatStream(context.Background(), "hi", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	if strings.Join(got, "") != "Hello world" {
		t.Errorf("accumulated = %q, want 'Hello world'", strings.Join(got, ""))
	}
}

func TestChatStreamEmptyBody(t *testing.T) {
	srv := streamServer(t, nil)
	defer srv.Close()

	calls := 0
	err := clientFor(srv).ChatStream(context.Background(), "hi", func(chunk string) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("callback calls = %d, want 0 for empty body", calls)
	}
}

func TestChatStreamCallbackError(t *testing.T) {
	srv := streamServer(t, []string{"a", "b", "c"})
	defer srv.Close()

	stop := errors.New("enough")
	err := clientFor(srv).ChatStream(context.Background(), "hi", func(chunk string) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("error = %v, want callback error", err)
	}
}

func TestChatStreamContextCancel(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := clientFor(srv).ChatStream(ctx, "hi", func(chunk string) error { return nil })
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
}

func TestChatStreamBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := clientFor(srv).ChatStream(context.Background(), "hi", func(chunk string) error { return nil })
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeBadStatus {
		t.Errorf("error = %v, want ErrTypeBadStatus", err)
	}
}

func TestChatStreamChan(t *testing.T) {
	srv := streamServer(t, []string{"one", "two"})
	defer srv.Close()

	var chunks []string
	var final *StreamEvent
	for ev := range clientFor(srv).ChatStreamChan(context.Background(), "hi") {
		if ev.Done {
			e := ev
			final = &e
			continue
		}
		chunks = append(chunks, ev.Chunk)
	}

	if final == nil {
		t.Fatal("expected a Done event before channel close")
	}
	if final.Err != nil {
		t.Errorf("final.Err = %v, want nil", final.Err)
	}
	if strings.Join(chunks, "") != "onetwo" {
		t.Errorf("chunks = %v, want content 'onetwo'", chunks)
	}
}

// =============================================================================
// ERROR CLASSIFICATION TESTS
// =============================================================================

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ClientError{Type: ErrTypeUnreachable, Message: "outer", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
	if got := err.Error(); got != "outer: root cause" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"unreachable sentinel", ErrUnreachable, IsUnreachable, true},
		{"timeout sentinel", ErrTimeout, IsTimeout, true},
		{"wrapped timeout", &ClientError{Type: ErrTypeTimeout, Message: "x"}, IsTimeout, true},
		{"mismatched", ErrTimeout, IsUnreachable, false},
		{"plain error", errors.New("x"), IsTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r) // any response counts as reachable
	}))
	defer srv.Close()

	if err := clientFor(srv).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}

	srv.Close()
	if err := clientFor(srv).Ping(context.Background()); err == nil {
		t.Error("Ping() after close should fail")
	}
}
