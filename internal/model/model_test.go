// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
	if msg.IsStreaming {
		t.Error("user message should not be streaming")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
}

func TestNewAssistantMessageStartsEmpty(t *testing.T) {
	msg := NewAssistantMessage()

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want 'assistant'", msg.Role)
	}
	if !msg.IsStreaming {
		t.Error("new assistant message should be streaming")
	}
	if msg.GetDisplayContent() != "" {
		t.Errorf("display content = %q, want empty", msg.GetDisplayContent())
	}
}

func TestAppendTokenIsCumulative(t *testing.T) {
	msg := NewAssistantMessage()

	msg.AppendToken("He")
	if got := msg.GetDisplayContent(); got != "He" {
		t.Errorf("after first chunk: display = %q, want 'He'", got)
	}

	msg.AppendToken("llo")
	if got := msg.GetDisplayContent(); got != "Hello" {
		t.Errorf("after second chunk: display = %q, want 'Hello'", got)
	}
}

func TestAppendTokenIgnoredAfterFinalize(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("done")
	msg.FinalizeStream(nil)

	msg.AppendToken(" extra")
	if got := msg.GetDisplayContent(); got != "done" {
		t.Errorf("display = %q, want 'done'", got)
	}
}

func TestFinalizeStream(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("partial")
	msg.FinalizeStream(nil)

	if msg.IsStreaming {
		t.Error("message should not be streaming after finalize")
	}
	if msg.Content != "partial" {
		t.Errorf("Content = %q, want 'partial'", msg.Content)
	}
	if msg.GetDisplayContent() != "partial" {
		t.Errorf("display = %q, want 'partial'", msg.GetDisplayContent())
	}
}

func TestSetContentIsAtomic(t *testing.T) {
	msg := NewAssistantMessage()
	msg.SetContent("whole reply")

	if msg.IsStreaming {
		t.Error("SetContent should finalize the message")
	}
	if msg.GetDisplayContent() != "whole reply" {
		t.Errorf("display = %q, want 'whole reply'", msg.GetDisplayContent())
	}
}

func TestSetError(t *testing.T) {
	msg := NewAssistantMessage()
	msg.SetError("⚠ backend is not reachable")

	if !msg.IsError {
		t.Error("IsError should be set")
	}
	if msg.IsStreaming {
		t.Error("errored message should be finalized")
	}
	if !strings.Contains(msg.GetDisplayContent(), "not reachable") {
		t.Errorf("display = %q", msg.GetDisplayContent())
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short content", "hi", 10, "hi"},
		{"exact length", "1234567890", 10, "1234567890"},
		{"truncated", "hello world oversized", 10, "hello w..."},
		{"unicode", "héllo wörld absolutely", 10, "héllo w..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewUserMessage(tt.content)
			if got := msg.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("other"), "other"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestNewTranscriptIsEmpty(t *testing.T) {
	tr := NewTranscript()

	if !tr.IsEmpty() {
		t.Error("new transcript should be empty")
	}
	if tr.MessageCount() != 0 {
		t.Errorf("MessageCount() = %d, want 0", tr.MessageCount())
	}
	if tr.ID == "" {
		t.Error("transcript should have an ID")
	}
}

func TestBeginTurnAppendsPair(t *testing.T) {
	tr := NewTranscript()

	user, assistant := tr.BeginTurn("question")

	if tr.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", tr.MessageCount())
	}
	if tr.Messages[0] != user || tr.Messages[1] != assistant {
		t.Error("BeginTurn messages should be appended in order")
	}
	if user.Role != RoleUser || user.Content != "question" {
		t.Errorf("user message = %+v", user)
	}
	if assistant.Role != RoleAssistant || !assistant.IsStreaming {
		t.Error("assistant placeholder should be streaming and empty")
	}
	if assistant.GetDisplayContent() != "" {
		t.Errorf("assistant content = %q, want empty", assistant.GetDisplayContent())
	}
}

func TestTranscriptAlternation(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("one")
	tr.SetLastContent("answer one")
	tr.BeginTurn("two")
	tr.SetLastContent("answer two")

	msgs := tr.GetHistory()
	if len(msgs) != 4 {
		t.Fatalf("len = %d, want 4", len(msgs))
	}
	for i, msg := range msgs {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if msg.Role != want {
			t.Errorf("message %d role = %q, want %q", i, msg.Role, want)
		}
	}
}

func TestAppendToLast(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("hi")

	tr.AppendToLast("He")
	tr.AppendToLast("llo")

	if got := tr.GetLastMessage().GetDisplayContent(); got != "Hello" {
		t.Errorf("last content = %q, want 'Hello'", got)
	}
}

func TestAppendToLastNoStreamingMessage(t *testing.T) {
	tr := NewTranscript()
	tr.AddUserMessage("just user")

	// Last message is not streaming; append must be a no-op
	tr.AppendToLast("chunk")
	if got := tr.GetLastMessage().GetDisplayContent(); got != "just user" {
		t.Errorf("content = %q, want 'just user'", got)
	}
}

func TestFinalizeLast(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("hi")
	tr.AppendToLast("reply")
	tr.FinalizeLast(nil)

	last := tr.GetLastMessage()
	if last.IsStreaming {
		t.Error("last message should be finalized")
	}
	if last.Content != "reply" {
		t.Errorf("Content = %q, want 'reply'", last.Content)
	}
}

func TestSetLastContent(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("hi")
	tr.SetLastContent("whole")

	last := tr.GetLastMessage()
	if last.IsStreaming || last.Content != "whole" {
		t.Errorf("last = %+v, want finalized 'whole'", last)
	}
}

func TestGetLastHelpers(t *testing.T) {
	tr := NewTranscript()
	if tr.GetLastMessage() != nil {
		t.Error("GetLastMessage on empty transcript should be nil")
	}

	tr.BeginTurn("q")
	if tr.GetLastUserMessage().Content != "q" {
		t.Error("GetLastUserMessage should find the user message")
	}
	if tr.GetLastAssistantMessage().Role != RoleAssistant {
		t.Error("GetLastAssistantMessage should find the placeholder")
	}
}

func TestClear(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("hi")
	tr.Clear()

	if !tr.IsEmpty() {
		t.Error("transcript should be empty after Clear")
	}
	if tr.Title != "" {
		t.Errorf("title = %q, want empty after Clear", tr.Title)
	}
}

func TestTitleFromFirstUserMessage(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("What is the capital of France?")

	if tr.GetTitle() != "What is the capital of France?" {
		t.Errorf("title = %q", tr.GetTitle())
	}
}

func TestClone(t *testing.T) {
	tr := NewTranscript()
	tr.BeginTurn("hi")
	tr.SetLastContent("there")

	clone := tr.Clone()
	clone.Messages[0].Content = "changed"

	if tr.Messages[0].Content != "hi" {
		t.Error("mutating the clone must not affect the original")
	}
	if clone.MessageCount() != tr.MessageCount() {
		t.Error("clone should have the same message count")
	}
}

// =============================================================================
// STATISTICS TESTS
// =============================================================================

func TestStatisticsLifecycle(t *testing.T) {
	stats := NewStatistics()
	stats.RecordFirstChunk()
	stats.Finalize()

	if stats.TTFC < 0 {
		t.Error("TTFC should be non-negative")
	}
	if stats.Elapsed < stats.TTFC {
		t.Error("Elapsed should be at least TTFC")
	}
	if out := stats.Format(); !strings.Contains(out, "TTFC") {
		t.Errorf("Format() = %q", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.234, "234ms"},
		{0.0, "0ms"},
		{2.5, "2.5s"},
		{12.0, "12.0s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
