// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateWaiting                // Whole-response request in flight
	StateStreaming              // Receiving streamed chunks
	StateError                  // Showing a blocking error
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation
	transcript *model.Transcript

	// Current in-flight turn
	streamingMsgID string
	streamingStats *model.Statistics

	// Streaming optimization
	streamingBuffer   *StreamingBuffer   // Batches chunks for efficient rendering
	viewportOptimizer *ViewportOptimizer // Reduces redundant viewport updates
	lastStreamTick    time.Time

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering
	markdown *components.Renderer

	// Key bindings
	keyMap KeyMap

	// Error state
	lastError *ErrorMsg

	// Display modes
	streamMode     bool
	markdownMode   bool
	showTimestamps bool

	// Status
	serverURL string
	backendUp bool
	statusMsg string

	// Thinking state (request sent, no first chunk yet)
	isThinking    bool
	thinkingStart time.Time

	// Help overlay
	showHelp bool
}

// New creates a new chat model. Display modes and the server URL come
// from the global config.
func New(theme *styles.Theme) Model {
	cfg := config.Global()
	if theme == nil {
		theme = styles.NewTheme()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII spinner frames for maximum terminal compatibility
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = theme.Spinner

	return Model{
		state:             StateReady,
		theme:             theme,
		transcript:        model.NewTranscript(),
		viewport:          vp,
		input:             ti,
		spinner:           sp,
		markdown:          components.NewRenderer(72),
		keyMap:            DefaultKeyMap(),
		streamingBuffer:   NewStreamingBuffer(),
		viewportOptimizer: NewViewportOptimizer(),
		lastStreamTick:    time.Now(),
		streamMode:        cfg.Chat.Stream,
		markdownMode:      cfg.Chat.Markdown,
		showTimestamps:    cfg.UI.ShowTimestamps,
		serverURL:         cfg.Server.BaseURL,
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Transcript returns the underlying transcript.
func (m Model) Transcript() *model.Transcript {
	return m.transcript
}

// State returns the current view state.
func (m Model) State() State {
	return m.state
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool {
	return m.state == StateWaiting || m.state == StateStreaming
}

// StreamingEnabled reports whether submits use the streaming endpoint.
func (m Model) StreamingEnabled() bool {
	return m.streamMode
}

// MarkdownEnabled reports whether assistant replies render as markdown.
func (m Model) MarkdownEnabled() bool {
	return m.markdownMode
}

// SetServerURL overrides the server URL shown in the header.
func (m *Model) SetServerURL(url string) {
	m.serverURL = url
}

// SetStreamMode overrides the streaming display mode.
func (m *Model) SetStreamMode(enabled bool) {
	m.streamMode = enabled
}

// SetMarkdownMode overrides the markdown display mode.
func (m *Model) SetMarkdownMode(enabled bool) {
	m.markdownMode = enabled
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitInputMsg:
		m.input.SetValue(msg.Content)
		return m.submitInput()

	case StreamStartMsg:
		return m.handleStreamStart(msg)

	case StreamTokenMsg:
		return m.handleStreamToken(msg)

	case StreamTickMsg:
		return m.handleStreamTick(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case ChatReplyMsg:
		return m.handleChatReply(msg)

	case BackendStatusMsg:
		m.backendUp = msg.Reachable
		if !msg.Reachable {
			m.statusMsg = "server unreachable"
			// On a cold start a dead backend deserves more than a status
			// icon; show the dismissible error box with a hint.
			if m.transcript.IsEmpty() && msg.Err != nil {
				errMsg := SmartErrorMsg("Cannot reach the chat backend", msg.Err)
				m.lastError = &errMsg
				m.state = StateError
			}
		} else {
			m.statusMsg = ""
		}
		return m, nil

	case ClearTranscriptMsg:
		return m.clearTranscript()

	case ConfigReloadedMsg:
		// Mode changes apply to the next turn; an in-flight stream keeps
		// the settings it started with.
		m.streamMode = msg.Stream
		m.markdownMode = msg.Markdown
		m.showTimestamps = msg.ShowTimestamps
		if msg.ServerURL != "" {
			m.serverURL = msg.ServerURL
		}
		m.statusMsg = "config reloaded"
		m.viewportOptimizer.ForceUpdate()
		m.updateViewport()
		return m, nil

	case ErrorMsg:
		m.lastError = &msg
		m.state = StateError
		return m, nil

	case ErrorDismissMsg:
		m.lastError = nil
		m.state = StateReady
		m.input.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		if m.isThinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Everything else goes to the viewport (mouse wheel etc.)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Conservative reserved heights; renderChat measures the real
	// heights and pads if these drift.
	const (
		headerHeight    = 2
		inputAreaHeight = 4
		statusBarHeight = 2
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	viewportWidth := m.width
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	// Input line renders inside a padded container; keep the text inside it
	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	// Markdown wraps a little narrower than the bubble width
	mdWidth := m.width - 12
	if mdWidth < 20 {
		mdWidth = 20
	}
	m.markdown.SetWidth(mdWidth)

	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	// Resize invalidates the cached content hash
	m.viewportOptimizer.ForceUpdate()
	m.updateViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works regardless of state
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// Help overlay swallows everything except close keys
	if m.showHelp {
		if key.Matches(msg, m.keyMap.Help) || key.Matches(msg, m.keyMap.Cancel) {
			m.showHelp = false
		}
		return m, nil
	}

	// Blocking error: any key dismisses
	if m.state == StateError {
		m.lastError = nil
		m.state = StateReady
		m.input.Focus()
		return m, textinput.Blink
	}

	switch {
	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		if m.Busy() {
			id := m.streamingMsgID
			return m, func() tea.Msg {
				return CancelStreamMsg{MessageID: id}
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		return m.clearTranscript()

	case key.Matches(msg, m.keyMap.ToggleMarkdown):
		m.markdownMode = !m.markdownMode
		if m.markdownMode {
			m.statusMsg = "markdown on"
		} else {
			m.statusMsg = "markdown off"
		}
		m.viewportOptimizer.ForceUpdate()
		m.updateViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleStream):
		m.streamMode = !m.streamMode
		if m.streamMode {
			m.statusMsg = "streaming on"
		} else {
			m.statusMsg = "streaming off"
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.Up),
		key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown),
		key.Matches(msg, m.keyMap.Home),
		key.Matches(msg, m.keyMap.End):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Everything else edits the input line
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// clearTranscript empties the transcript unless a request is in flight.
func (m Model) clearTranscript() (tea.Model, tea.Cmd) {
	if m.Busy() {
		m.statusMsg = "cannot clear while a response is in flight"
		return m, nil
	}

	m.transcript.Clear()
	m.statusMsg = ""
	m.viewportOptimizer.Reset()
	m.updateViewport()
	return m, nil
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

func (m Model) handleStreamStart(msg StreamStartMsg) (tea.Model, tea.Cmd) {
	m.streamingMsgID = msg.MessageID
	m.streamingStats = model.NewStatistics()
	m.state = StateStreaming
	m.isThinking = true
	m.thinkingStart = msg.StartTime

	m.streamingBuffer.Reset()
	m.lastStreamTick = time.Now()

	// Spinner for the thinking phase, tick loop for batched rendering
	return m, tea.Batch(m.spinner.Tick, streamTickCmd())
}

func (m Model) handleStreamToken(msg StreamTokenMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	if msg.IsFirst {
		if m.streamingStats != nil {
			m.streamingStats.RecordFirstChunk()
		}
		m.isThinking = false
	}

	// Buffer the chunk; the tick handler renders it
	m.streamingBuffer.Write(msg.Token)
	return m, nil
}

// handleStreamTick flushes buffered chunks at the capped frame rate.
func (m Model) handleStreamTick(msg StreamTickMsg) (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}

	if content, hasContent := m.streamingBuffer.Flush(); hasContent {
		m.transcript.AppendToLast(content)
		m.updateViewport()
		m.viewport.GotoBottom()
	}

	m.lastStreamTick = msg.Time

	return m, streamTickCmd()
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	// Flush whatever the tick loop has not rendered yet
	if content, hasContent := m.streamingBuffer.ForceFlush(); hasContent {
		m.transcript.AppendToLast(content)
	}

	if msg.Stats != nil {
		m.transcript.FinalizeLast(msg.Stats)
	} else {
		m.transcript.FinalizeLast(m.streamingStats)
	}

	m.state = StateReady
	m.isThinking = false
	m.streamingMsgID = ""
	m.streamingStats = nil

	m.updateViewport()
	m.viewport.GotoBottom()
	m.input.Focus()

	return m, textinput.Blink
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != "" && msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	if content, hasContent := m.streamingBuffer.ForceFlush(); hasContent {
		m.transcript.AppendToLast(content)
	}

	if backend.IsCanceled(msg.Err) {
		// User cancelled: keep the partial reply rather than discarding it
		m.transcript.FinalizeLast(m.streamingStats)
		m.statusMsg = "response cancelled"
	} else {
		m.transcript.SetLastError("⚠ " + msg.Err.Error())
		m.statusMsg = ""
	}

	m.state = StateReady
	m.isThinking = false
	m.streamingMsgID = ""
	m.streamingStats = nil

	m.updateViewport()
	m.viewport.GotoBottom()
	m.input.Focus()

	return m, textinput.Blink
}

func (m Model) handleChatReply(msg ChatReplyMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	// Whole reply lands atomically
	m.transcript.SetLastContent(msg.Reply)

	m.state = StateReady
	m.isThinking = false
	m.streamingMsgID = ""
	m.streamingStats = nil

	m.updateViewport()
	m.viewport.GotoBottom()
	m.input.Focus()

	return m, textinput.Blink
}

// =============================================================================
// VIEWPORT
// =============================================================================

// updateViewport re-renders the transcript into the viewport, skipping
// the redraw when nothing changed.
func (m *Model) updateViewport() {
	content := m.renderMessages()
	if m.viewportOptimizer.ShouldUpdate(content) {
		m.viewport.SetContent(content)
		m.viewportOptimizer.MarkClean()
	}
}
