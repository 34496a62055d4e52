// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
//
// This file defines the message types exchanged between the chat model
// and the hosting program. Requests flow out of the model (the host owns
// the HTTP client); stream events flow back in.
package chat

import (
	"time"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/model"
)

// =============================================================================
// OUTBOUND REQUESTS (model -> host)
// =============================================================================

// StreamRequestMsg asks the host to start a streaming chat request.
// The MessageID identifies the assistant placeholder awaiting tokens.
type StreamRequestMsg struct {
	MessageID string
	Content   string
}

// ChatRequestMsg asks the host to perform a whole-response chat request.
type ChatRequestMsg struct {
	MessageID string
	Content   string
}

// CancelStreamMsg asks the host to cancel the in-flight stream.
type CancelStreamMsg struct {
	MessageID string
}

// =============================================================================
// INBOUND STREAM EVENTS (host -> model)
// =============================================================================

// StreamStartMsg signals that the stream request has been dispatched.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// StreamTokenMsg carries one chunk of a streaming response.
// IsFirst marks the chunk that ends the thinking phase.
type StreamTokenMsg struct {
	MessageID string
	Token     string
	IsFirst   bool
}

// StreamTickMsg drives batched rendering of buffered tokens.
type StreamTickMsg struct {
	Time time.Time
}

// StreamCompleteMsg signals that the response body has ended.
type StreamCompleteMsg struct {
	MessageID string
	Stats     *model.Statistics
}

// StreamErrorMsg signals that the request failed or was cancelled.
type StreamErrorMsg struct {
	MessageID string
	Err       error
}

// ChatReplyMsg carries a whole (non-streamed) reply.
type ChatReplyMsg struct {
	MessageID string
	Reply     string
}

// =============================================================================
// STATUS AND CONTROL
// =============================================================================

// BackendStatusMsg reports the result of a reachability probe.
type BackendStatusMsg struct {
	Reachable bool
	Err       error
}

// SubmitInputMsg submits text programmatically, as if typed and entered.
type SubmitInputMsg struct {
	Content string
}

// ClearTranscriptMsg empties the transcript and resets the view.
type ClearTranscriptMsg struct{}

// ConfigReloadedMsg carries freshly reloaded settings after the config
// file changed on disk.
type ConfigReloadedMsg struct {
	Stream         bool
	Markdown       bool
	ShowTimestamps bool
	ServerURL      string
}

// ErrorMsg is a blocking error with an optional recovery suggestion.
type ErrorMsg struct {
	Title      string
	Message    string
	Suggestion string
}

// ErrorDismissMsg dismisses the current blocking error.
type ErrorDismissMsg struct{}

// SmartErrorMsg builds an ErrorMsg with a suggestion derived from the
// error's classification.
func SmartErrorMsg(title string, err error) ErrorMsg {
	msg := ErrorMsg{Title: title}
	if err == nil {
		return msg
	}
	msg.Message = err.Error()

	switch {
	case backend.IsUnreachable(err):
		msg.Suggestion = "Check that the chat server is running and the server URL is correct."
	case backend.IsTimeout(err):
		msg.Suggestion = "The server took too long to respond. Try again, or raise the timeout in the config."
	}
	return msg
}
