// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript holds the ordered messages of one chat session.
//
// The transcript is append-only while a session runs: messages are never
// removed or reordered, only added and (for the latest assistant message)
// filled in. Clear resets the whole transcript, which is the only way
// history is discarded.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []*Message `json:"messages"`
}

// NewTranscript creates a new empty transcript with a generated ID.
func NewTranscript() *Transcript {
	return &Transcript{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the transcript.
func (t *Transcript) AddMessage(msg *Message) {
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = time.Now()
	t.updateTitle()
}

// AddUserMessage creates and appends a user message.
func (t *Transcript) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	t.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends a streaming assistant message
// with empty content.
func (t *Transcript) AddAssistantMessage() *Message {
	msg := NewAssistantMessage()
	t.AddMessage(msg)
	return msg
}

// AddSystemMessage creates and appends a system message.
func (t *Transcript) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	t.AddMessage(msg)
	return msg
}

// BeginTurn appends the user message and its empty assistant placeholder as
// one step. Both messages exist before any reply content arrives, so the
// user's text is visible immediately and the reply slot is already waiting.
func (t *Transcript) BeginTurn(content string) (*Message, *Message) {
	user := t.AddUserMessage(content)
	assistant := t.AddAssistantMessage()
	return user, assistant
}

// GetLastMessage returns the most recent message, or nil if empty.
func (t *Transcript) GetLastMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// GetLastAssistantMessage returns the most recent assistant message.
func (t *Transcript) GetLastAssistantMessage() *Message {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAssistant {
			return t.Messages[i]
		}
	}
	return nil
}

// GetLastUserMessage returns the most recent user message.
func (t *Transcript) GetLastUserMessage() *Message {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleUser {
			return t.Messages[i]
		}
	}
	return nil
}

// AppendToLast appends a chunk to the last (streaming) message.
func (t *Transcript) AppendToLast(chunk string) {
	last := t.GetLastMessage()
	if last != nil && last.IsStreaming {
		last.AppendToken(chunk)
		t.UpdatedAt = time.Now()
	}
}

// FinalizeLast finalizes the last streaming message with timing.
func (t *Transcript) FinalizeLast(stats *Statistics) {
	last := t.GetLastMessage()
	if last != nil && last.IsStreaming {
		last.FinalizeStream(stats)
		t.UpdatedAt = time.Now()
	}
}

// SetLastContent sets the last message's content in one atomic step.
// Used for whole replies arriving all at once.
func (t *Transcript) SetLastContent(content string) {
	last := t.GetLastMessage()
	if last != nil {
		last.SetContent(content)
		t.UpdatedAt = time.Now()
	}
}

// SetLastError finalizes the last message with an error placeholder.
func (t *Transcript) SetLastError(placeholder string) {
	last := t.GetLastMessage()
	if last != nil {
		last.SetError(placeholder)
		t.UpdatedAt = time.Now()
	}
}

// Clear removes all messages, resetting the transcript.
func (t *Transcript) Clear() {
	t.Messages = make([]*Message, 0)
	t.Title = ""
	t.UpdatedAt = time.Now()
}

// GetMessageByID returns a message by its ID, or nil.
func (t *Transcript) GetMessageByID(id string) *Message {
	for _, msg := range t.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// GetHistory returns the message history for display.
func (t *Transcript) GetHistory() []*Message {
	return t.Messages
}

// MessageCount returns the number of messages.
func (t *Transcript) MessageCount() int {
	return len(t.Messages)
}

// IsEmpty returns true if there are no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.Messages) == 0
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user message if not set.
func (t *Transcript) updateTitle() {
	if t.Title != "" {
		return
	}

	for _, msg := range t.Messages {
		if msg.Role == RoleUser {
			t.Title = msg.Preview(50)
			return
		}
	}
}

// SetTitle manually sets the transcript title.
func (t *Transcript) SetTitle(title string) {
	t.Title = title
	t.UpdatedAt = time.Now()
}

// GetTitle returns the transcript title or a default.
func (t *Transcript) GetTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return "New Chat"
}

// =============================================================================
// HELPERS
// =============================================================================

// Preview returns a short preview of the transcript.
func (t *Transcript) Preview() string {
	if len(t.Messages) == 0 {
		return "Empty chat"
	}

	first := t.GetLastUserMessage()
	if first == nil {
		first = t.Messages[0]
	}

	return first.Preview(100)
}

// Clone creates a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	clone := &Transcript{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Messages:  make([]*Message, len(t.Messages)),
	}

	for i, msg := range t.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}

	return clone
}
