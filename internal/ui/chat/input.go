// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
//
// This file contains the input submission pipeline: validation, slash
// command dispatch, and turn creation.
package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput validates the input line and starts a new turn.
// Empty or whitespace-only input is a no-op. Slash commands are handled
// locally and never reach the server.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	// One request at a time
	if m.Busy() {
		m.statusMsg = "still waiting for the previous response"
		return m, nil
	}

	if strings.HasPrefix(content, "/") {
		m.input.Reset()
		return m.handleCommand(content)
	}

	m.input.Reset()
	m.statusMsg = ""

	// Append the user message and the empty assistant placeholder
	// together, before the request goes out.
	_, assistant := m.transcript.BeginTurn(content)

	m.streamingMsgID = assistant.ID
	m.streamingStats = nil
	m.isThinking = true
	m.thinkingStart = time.Now()

	m.updateViewport()
	m.viewport.GotoBottom()

	id := assistant.ID
	if m.streamMode {
		m.state = StateStreaming
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return StreamRequestMsg{MessageID: id, Content: content}
		})
	}

	m.state = StateWaiting
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return ChatRequestMsg{MessageID: id, Content: content}
	})
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand dispatches a local slash command.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.Fields(content)[0])

	switch cmd {
	case "/clear":
		return m.clearTranscript()

	case "/markdown":
		m.markdownMode = !m.markdownMode
		if m.markdownMode {
			m.statusMsg = "markdown on"
		} else {
			m.statusMsg = "markdown off"
		}
		m.viewportOptimizer.ForceUpdate()
		m.updateViewport()
		return m, nil

	case "/stream":
		m.streamMode = !m.streamMode
		if m.streamMode {
			m.statusMsg = "streaming on"
		} else {
			m.statusMsg = "streaming off"
		}
		return m, nil

	case "/help":
		m.showHelp = true
		return m, nil

	case "/quit", "/exit":
		return m, tea.Quit

	default:
		m.transcript.AddSystemMessage("Unknown command: " + cmd + " (try /help)")
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil
	}
}
