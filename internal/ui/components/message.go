// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the chatterm TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single message styled by role. The bubble styles
// come from the theme so every surface renders transcripts the same way.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	IsLatest      bool
	ShowTimestamp bool
	ShowStats     bool
	Streaming     bool

	// BodyRenderer, when set, produces the assistant body (markdown or
	// highlighted code fences) instead of the default wrapped bubble. The
	// content already carries the streaming cursor when one applies;
	// streaming reports whether the message is still receiving chunks.
	BodyRenderer func(content string, streaming bool, maxWidth int) string

	theme *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		msg = &model.Message{Role: model.RoleSystem}
	}
	if theme == nil {
		theme = styles.NewTheme()
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowStats:     true,
		Streaming:     msg.IsStreaming,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetIsLatest marks this as the latest message.
func (b *MessageBubble) SetIsLatest(latest bool) {
	b.IsLatest = latest
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message.IsError {
		return b.renderErrorBubble()
	}
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	case model.RoleSystem:
		return b.renderSystemBubble()
	default:
		return b.renderGenericBubble()
	}
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := WordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("you")

	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header = header + " " + ts
		}
	}

	// Right-align the bubble with a left margin
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(
		lipgloss.Right,
		marginStyle.Render(header),
		marginStyle.Render(bubble),
	)
}

// ==========================================================================
// ASSISTANT BUBBLE - Purple/violet tones, left-aligned
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.GetDisplayContent()

	// A finalized empty reply (e.g. a turn cancelled before the first
	// chunk) renders as nothing rather than an empty bubble
	if strings.TrimSpace(content) == "" && !b.Streaming {
		return ""
	}

	// Show cursor for streaming messages
	if b.Streaming {
		content = content + b.renderStreamingCursor()
	}
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	var bubble string
	if b.BodyRenderer != nil {
		bubble = b.BodyRenderer(content, b.Streaming, maxContentWidth)
	} else {
		wrapped := WordWrap(content, maxContentWidth)
		contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)
		bubble = b.theme.AssistantBubble.Width(contentWidth).MarginRight(4).Render(wrapped)
	}

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("assistant")

	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header = header + " " + ts
		}
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	// Statistics line for completed messages
	if b.ShowStats && !b.Streaming && b.Message.Elapsed > 0 {
		if stats := b.renderStats(); stats != "" {
			result = lipgloss.JoinVertical(lipgloss.Left, result, stats)
		}
	}

	return result
}

// ==========================================================================
// SYSTEM BUBBLE - Amber/yellow tones, centered
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "System message"
	}

	maxContentWidth := b.Width - 20
	if maxContentWidth < 30 {
		maxContentWidth = 30
	}
	wrapped := WordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-16)

	bubble := b.theme.SystemBubble.Width(contentWidth).Render(wrapped)

	centerStyle := lipgloss.NewStyle().
		Width(b.Width).
		Align(lipgloss.Center)

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := labelStyle.Render("system")

	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header = header + " " + ts
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Center,
		centerStyle.Render(header),
		centerStyle.Render(bubble),
	)
}

// ==========================================================================
// ERROR BUBBLE - Rose left border for failed turns
// ==========================================================================

func (b *MessageBubble) renderErrorBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "request failed"
	}

	maxContentWidth := b.Width - 10
	if maxContentWidth < 30 {
		maxContentWidth = 30
	}
	wrapped := WordWrap(content, maxContentWidth)

	bubble := b.theme.ErrorBubble.Render(wrapped)

	iconStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Bold(true)
	header := iconStyle.Render(styles.StatusIndicators.Error + " error")

	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header = header + " " + ts
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}

// ==========================================================================
// GENERIC BUBBLE - Fallback for unknown roles
// ==========================================================================

func (b *MessageBubble) renderGenericBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 10
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := WordWrap(content, maxContentWidth)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 2)

	return bubbleStyle.Render(wrapped)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderTimestamp renders a dimmed timestamp.
func (b *MessageBubble) renderTimestamp() string {
	ts := b.Message.Timestamp
	if ts.IsZero() {
		return ""
	}

	timestampStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	// Same day shows just the time, otherwise date and time.
	now := time.Now()
	var formatted string
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = formatTime(ts)
	} else {
		formatted = formatDate(ts) + ", " + formatTime(ts)
	}

	return timestampStyle.Render(formatted)
}

// renderStats renders message statistics.
func (b *MessageBubble) renderStats() string {
	stats := b.Message.FormatStats()
	if stats == "" {
		return ""
	}

	return b.theme.StatsText.Render(stats)
}

// renderStreamingCursor renders the streaming cursor.
func (b *MessageBubble) renderStreamingCursor() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Blink(true)

	return cursorStyle.Render("_")
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// WordWrap wraps text to fit within the specified display width.
// Widths are measured with go-runewidth so CJK and emoji wrap correctly.
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]

		for _, word := range words[1:] {
			if util.StringWidth(currentLine)+1+util.StringWidth(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}

		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		if w := util.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// formatTime formats a time as "3:04 PM".
func formatTime(t time.Time) string {
	hour := t.Hour()
	minute := t.Minute()
	ampm := "AM"

	if hour >= 12 {
		ampm = "PM"
		if hour > 12 {
			hour -= 12
		}
	}
	if hour == 0 {
		hour = 12
	}

	minuteStr := util.IntToString(minute)
	if minute < 10 {
		minuteStr = "0" + minuteStr
	}

	return util.IntToString(hour) + ":" + minuteStr + " " + ampm
}

// formatDate formats a date as "Jan 5".
func formatDate(t time.Time) string {
	months := []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}

	return months[t.Month()-1] + " " + util.IntToString(t.Day())
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a full transcript as a stack of bubbles.
type MessageList struct {
	Messages       []*model.Message
	Width          int
	ShowTimestamps bool
	ShowStats      bool

	// BodyRenderer is handed to every assistant bubble. See MessageBubble.
	BodyRenderer func(content string, streaming bool, maxWidth int) string

	theme *styles.Theme
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Messages:       []*model.Message{},
		Width:          80,
		ShowTimestamps: true,
		ShowStats:      true,
		theme:          theme,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)

		return emptyStyle.Render("No messages yet. Start a conversation!")
	}

	var bubbles []string

	for i, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubble.ShowStats = ml.ShowStats
		bubble.BodyRenderer = ml.BodyRenderer
		bubble.SetIsLatest(i == len(ml.Messages)-1)

		if view := bubble.View(); view != "" {
			bubbles = append(bubbles, view)
		}
	}

	return strings.Join(bubbles, "\n\n")
}
