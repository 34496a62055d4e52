// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
//
// This file contains all rendering: header, transcript, input area,
// status bar, and the help overlay. Per-message rendering is delegated
// to the components package; this file only decides how assistant
// bodies are produced (markdown vs. highlighted code fences).
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/util"
)

// =============================================================================
// MAIN LAYOUT
// =============================================================================

func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	// Build fixed-height components first to calculate available space
	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	headerHeight := lipgloss.Height(header)
	inputHeight := lipgloss.Height(input)
	statusHeight := lipgloss.Height(status)

	availableHeight := m.height - headerHeight - inputHeight - statusHeight
	if availableHeight < 1 {
		availableHeight = 1
	}

	messages := m.viewport.View()

	// The viewport is sized in handleResize; force the height here if the
	// two ever drift so the layout never breaks.
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(messages)
	}

	base := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		messages,
		input,
		status,
	)

	if m.state == StateError && m.lastError != nil {
		return m.renderErrorBox(base)
	}

	return base
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the title bar with the server URL and a
// connection indicator. Always one line high.
func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := m.theme.HeaderTitle.Render("chatterm")

	// Long URLs must not push the indicator off the single-line bar
	urlWidth := width - 24
	if urlWidth < 10 {
		urlWidth = 10
	}
	serverInfo := m.theme.HeaderMeta.Render(" | " + util.TruncateWidth(m.serverURL, urlWidth))

	var statusIcon string
	switch {
	case m.state == StateStreaming || m.state == StateWaiting:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" " + styles.StatusIndicators.Info)
	case !m.backendUp:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Render(" " + styles.StatusIndicators.Error)
	default:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" " + styles.StatusIndicators.Success)
	}

	var modeBadges []string
	if m.streamMode {
		modeBadges = append(modeBadges, "stream")
	}
	if m.markdownMode {
		modeBadges = append(modeBadges, "md")
	}
	var badge string
	if len(modeBadges) > 0 {
		badge = " " + m.theme.ModeBadge.Render(strings.Join(modeBadges, "+"))
	}

	return m.theme.Header.
		Width(width).
		Render(title + serverInfo + statusIcon + badge)
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the full transcript as a stack of bubbles.
func (m *Model) renderMessages() string {
	if m.transcript == nil || m.transcript.IsEmpty() {
		return m.renderEmptyState()
	}

	list := components.NewMessageList(m.theme)
	list.SetWidth(m.width)
	list.ShowTimestamps = m.showTimestamps
	list.BodyRenderer = m.renderAssistantBody
	list.SetMessages(m.transcript.GetHistory())

	out := list.View()

	if m.isThinking {
		out += "\n" + m.renderThinking()
	}

	return out
}

// renderAssistantBody produces assistant message bodies. Completed replies
// render as markdown when markdown mode is on; streaming content renders
// raw with highlighted code fences so partial markup never flickers.
func (m *Model) renderAssistantBody(content string, streaming bool, maxWidth int) string {
	if m.markdownMode && !streaming {
		return m.markdown.Render(content)
	}
	return m.renderContentWithCodeBlocks(content, maxWidth)
}

// renderContentWithCodeBlocks renders plain assistant text, splitting out
// fenced code blocks for chroma highlighting.
func (m *Model) renderContentWithCodeBlocks(content string, maxWidth int) string {
	wrapWidth := maxWidth - 4
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	textBubble := m.theme.AssistantBubble.MaxWidth(maxWidth)

	if !strings.Contains(content, "```") {
		return textBubble.Render(components.WordWrap(content, wrapWidth))
	}

	var parts []string
	var currentText []string
	var codeLines []string
	var language string
	var inCodeBlock bool

	flushText := func() {
		if len(currentText) == 0 {
			return
		}
		text := strings.Join(currentText, "\n")
		if strings.TrimSpace(text) != "" {
			parts = append(parts, textBubble.Render(components.WordWrap(text, wrapWidth)))
		}
		currentText = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "```") {
			if inCodeBlock {
				flushText()
				cb := components.NewCodeBlock(language, strings.Join(codeLines, "\n"))
				cb.SetMaxWidth(maxWidth)
				parts = append(parts, cb.Render())
				codeLines = nil
				language = ""
				inCodeBlock = false
			} else {
				flushText()
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCodeBlock = true
			}
		} else if inCodeBlock {
			codeLines = append(codeLines, line)
		} else {
			currentText = append(currentText, line)
		}
	}

	// Unclosed fence mid-stream renders as a code block in progress
	if inCodeBlock && len(codeLines) > 0 {
		cb := components.NewCodeBlock(language, strings.Join(codeLines, "\n"))
		cb.SetMaxWidth(maxWidth)
		parts = append(parts, cb.Render())
	}
	flushText()

	return strings.Join(parts, "\n")
}

// renderThinking renders the spinner shown before the first chunk arrives.
func (m *Model) renderThinking() string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.spinner.View() + m.theme.ThinkingText.Render(" thinking..."))
}

// renderEmptyState renders the welcome screen shown before the first turn.
func (m *Model) renderEmptyState() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	logo := m.theme.HeaderTitle.Render("chatterm")
	hint := m.theme.HeaderMeta.Render("Type a message and press enter. ctrl+h for help.")
	server := m.theme.HeaderMeta.Italic(true).Render(m.serverURL)

	content := lipgloss.JoinVertical(lipgloss.Center, logo, "", hint, server)

	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Padding(2, 0).
		Render(content)
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the bordered input area with the char count.
func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	return m.theme.InputContainer.
		Width(width - 2).
		Render(m.input.View() + "\n" + m.renderCharCount())
}

// renderCharCount renders the character counter under the input line.
func (m Model) renderCharCount() string {
	count := util.RuneLen(m.input.Value())
	limit := m.input.CharLimit

	text := util.IntToString(count) + "/" + util.IntToString(limit)

	style := m.theme.CharCount
	if limit > 0 && count >= limit-limit/10 {
		style = m.theme.CharCountWarning
	}

	return style.Render(text)
}

// =============================================================================
// STATUS BAR
// =============================================================================

// renderStatusBar renders the bottom bar with shortcuts and transient status.
func (m Model) renderStatusBar() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var shortcuts []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		shortcuts = append(shortcuts, m.theme.ShortcutKey.Render(h.Key)+m.theme.ShortcutDesc.Render(" "+h.Desc))
	}
	left := strings.Join(shortcuts, m.theme.ShortcutDesc.Render(" | "))

	var right string
	if m.statusMsg != "" {
		right = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(m.statusMsg)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.StatusBar.
		Width(width).
		Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// OVERLAYS
// =============================================================================

// renderHelpOverlay renders the full-screen help view.
func (m Model) renderHelpOverlay() string {
	keyStyle := m.theme.HelpKey.Width(24)

	var lines []string
	lines = append(lines, m.theme.HelpTitle.Render("chatterm keyboard shortcuts"), "")

	for _, section := range m.keyMap.HelpSections() {
		lines = append(lines, m.theme.HelpTitle.Render(section.Title))
		for _, item := range section.Items {
			lines = append(lines, "  "+keyStyle.Render(item.Key)+m.theme.HelpDesc.Render(item.Desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines, m.theme.ErrorHint.Render("Press ctrl+h or esc to close"))

	box := m.theme.HelpBox.Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderErrorBox overlays a blocking error box on the base view.
func (m Model) renderErrorBox(base string) string {
	title := m.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + m.lastError.Title)
	message := m.theme.ErrorMessage.Render(components.WordWrap(m.lastError.Message, 60))

	parts := []string{title, "", message}
	if m.lastError.Suggestion != "" {
		parts = append(parts, "", m.theme.ErrorHint.Render(components.WordWrap(m.lastError.Suggestion, 60)))
	}
	parts = append(parts, "", m.theme.ErrorHint.Render("Press any key to dismiss"))

	box := m.theme.ErrorBox.Render(strings.Join(parts, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
