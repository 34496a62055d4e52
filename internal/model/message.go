// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jeranaias/chatterm/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a transcript.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"` // Content being streamed, merged into Content when done

	// IsError marks an assistant message that carries a failure placeholder
	// instead of a reply.
	IsError bool `json:"is_error,omitempty"`

	// Timing (for assistant messages)
	TTFC    time.Duration `json:"ttfc_ns,omitempty"`    // Time to first chunk
	Elapsed time.Duration `json:"elapsed_ns,omitempty"` // Total reply time
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message in streaming state
// with empty content. The message accumulates chunks until finalized.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendToken appends a chunk of streamed text to a streaming message.
// Content is cumulative: the display content only ever grows.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// FinalizeStream completes streaming, merging accumulated content into
// Content and recording timing if provided.
func (m *Message) FinalizeStream(stats *Statistics) {
	if !m.IsStreaming {
		return
	}

	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false

	if stats != nil {
		m.TTFC = stats.TTFC
		m.Elapsed = stats.Elapsed
	}
}

// SetContent replaces the message content in one step and leaves the message
// finalized. Used for whole replies: no intermediate state is ever visible.
func (m *Message) SetContent(content string) {
	m.streamContent.Reset()
	m.Content = content
	m.IsStreaming = false
}

// SetError finalizes the message with an error placeholder.
func (m *Message) SetError(placeholder string) {
	m.SetContent(placeholder)
	m.IsError = true
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.GetDisplayContent(), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// FormatStats returns a formatted timing summary for assistant messages.
func (m *Message) FormatStats() string {
	if m.Role != RoleAssistant || m.Elapsed == 0 {
		return ""
	}

	// Format: "2.5s | TTFC 234ms"
	return formatDuration(m.Elapsed.Seconds()) + " | " +
		"TTFC " + util.Int64ToString(m.TTFC.Milliseconds()) + "ms"
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing information for one reply.
type Statistics struct {
	StartTime      time.Time
	FirstChunkTime time.Time
	EndTime        time.Time

	// Derived metrics (computed on Finalize)
	TTFC    time.Duration
	Elapsed time.Duration
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// RecordFirstChunk records when the first chunk was received.
func (s *Statistics) RecordFirstChunk() {
	if s.FirstChunkTime.IsZero() {
		s.FirstChunkTime = time.Now()
		s.TTFC = s.FirstChunkTime.Sub(s.StartTime)
	}
}

// Finalize computes the final timing.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now()
	s.Elapsed = s.EndTime.Sub(s.StartTime)
}

// Format returns a formatted string of the statistics.
func (s *Statistics) Format() string {
	return formatDuration(s.Elapsed.Seconds()) + " | " +
		"TTFC " + util.Int64ToString(s.TTFC.Milliseconds()) + "ms"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}

// formatDuration formats seconds as a short duration string: milliseconds
// below one second, one decimal place above.
func formatDuration(seconds float64) string {
	if seconds < 1 {
		return util.IntToString(int(seconds*1000)) + "ms"
	}
	return util.FloatToStringPrec(seconds, 1) + "s"
}
