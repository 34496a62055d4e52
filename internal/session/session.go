// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives a chat turn from user input to finished reply.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned when the submitted input is empty or
	// whitespace-only. Nothing is appended and no request is sent; callers
	// treat it as a silent no-op.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy is returned when a submit arrives while a previous turn is
	// still in flight.
	ErrBusy = errors.New("a reply is already in progress")
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the subset of the backend client the session needs.
type Backend interface {
	// Chat returns the complete reply for a message.
	Chat(ctx context.Context, message string) (string, error)

	// ChatStream delivers the reply chunk by chunk through the callback.
	ChatStream(ctx context.Context, message string, callback func(chunk string) error) error
}

// =============================================================================
// EVENTS
// =============================================================================

// Events are optional observer hooks fired during a turn. Nil fields are
// skipped. Hooks run on the goroutine executing Submit.
type Events struct {
	// OnToken fires after each streamed chunk has been applied to the
	// transcript. content is the cumulative reply so far.
	OnToken func(chunk string, content string)

	// OnComplete fires once the assistant message is finalized.
	OnComplete func(content string)

	// OnError fires when a turn fails, after the error placeholder has been
	// written to the transcript.
	OnError func(err error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns a transcript and runs chat turns against a backend.
//
// Submit is safe for concurrent use, but only one turn may be in flight at a
// time: concurrent submits are rejected with ErrBusy rather than queued, so
// the transcript's user/assistant alternation can never interleave.
type Session struct {
	transcript *model.Transcript
	backend    Backend

	mu        sync.Mutex
	inFlight  bool
	streaming bool

	events Events
}

// New creates a session with a fresh transcript.
// streaming selects whether Submit uses the streaming endpoint.
func New(backend Backend, streaming bool) *Session {
	return &Session{
		transcript: model.NewTranscript(),
		backend:    backend,
		streaming:  streaming,
	}
}

// SetEvents installs observer hooks. Call before Submit.
func (s *Session) SetEvents(events Events) {
	s.events = events
}

// Transcript returns the session transcript.
func (s *Session) Transcript() *model.Transcript {
	return s.transcript
}

// Busy reports whether a turn is currently in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Streaming reports whether Submit uses the streaming endpoint.
func (s *Session) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// SetStreaming switches between whole-response and streamed turns.
// Takes effect on the next Submit.
func (s *Session) SetStreaming(streaming bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = streaming
}

// Clear resets the transcript. Rejected while a turn is in flight.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrBusy
	}
	s.transcript.Clear()
	return nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs one chat turn: it appends the user message and an empty
// assistant placeholder, sends the request, and fills the placeholder with
// the reply.
//
// Empty or whitespace-only input is a no-op returning ErrEmptyInput. The
// user/assistant pair is appended before any network activity, so the input
// is visible in the transcript immediately. In whole-response mode the reply
// appears as a single atomic update; in streaming mode it grows chunk by
// chunk. On failure the placeholder is finalized with an error notice and
// the error is returned; cancellation is the exception — the partial reply
// accumulated so far is kept as the message content.
func (s *Session) Submit(ctx context.Context, input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inFlight = true
	streaming := s.streaming
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	s.transcript.BeginTurn(trimmed)

	var err error
	if streaming {
		err = s.runStreaming(ctx, trimmed)
	} else {
		err = s.runWhole(ctx, trimmed)
	}

	if err != nil {
		if backend.IsCanceled(err) {
			// User cancelled: keep whatever streamed so far, not an error
			s.transcript.FinalizeLast(nil)
		} else {
			s.transcript.SetLastError("⚠ " + err.Error())
			if s.events.OnError != nil {
				s.events.OnError(err)
			}
		}
		return err
	}

	if s.events.OnComplete != nil {
		s.events.OnComplete(s.transcript.GetLastMessage().GetDisplayContent())
	}
	return nil
}

// runWhole performs a whole-response turn. The placeholder stays empty until
// the full reply is set in one step.
func (s *Session) runWhole(ctx context.Context, message string) error {
	reply, err := s.backend.Chat(ctx, message)
	if err != nil {
		return err
	}

	s.transcript.SetLastContent(reply)
	return nil
}

// runStreaming performs a streamed turn, applying each chunk to the
// transcript as it arrives.
func (s *Session) runStreaming(ctx context.Context, message string) error {
	stats := model.NewStatistics()

	err := s.backend.ChatStream(ctx, message, func(chunk string) error {
		stats.RecordFirstChunk()
		s.transcript.AppendToLast(chunk)
		if s.events.OnToken != nil {
			s.events.OnToken(chunk, s.transcript.GetLastMessage().GetDisplayContent())
		}
		return nil
	})
	if err != nil {
		return err
	}

	stats.Finalize()
	s.transcript.FinalizeLast(stats)
	return nil
}
