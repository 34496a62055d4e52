// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL handler for the chatterm CLI.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   chatterm chat                     Start the REPL
//   chatterm chat --no-stream         Whole replies instead of streaming
//   chatterm chat --server URL        Talk to a different backend
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /stream             Toggle streaming mode
//   /markdown           Toggle markdown rendering
//   /status, /s         Show session statistics
//   /history            Show conversation history
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current reply
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/session"
	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with persistent input history.
type lineReader struct {
	line        *liner.State
	historyFile string
	maxEntries  int
}

// newLineReader creates a line reader and loads any existing history.
func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	cfg := config.Global()

	historyFile, err := cfg.HistoryPath()
	if err != nil {
		historyFile = filepath.Join(os.TempDir(), "chatterm_history")
	}

	r := &lineReader{
		line:        line,
		historyFile: historyFile,
		maxEntries:  cfg.History.MaxEntries,
	}
	r.loadHistory()
	return r
}

func (r *lineReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// readInput reads one line with history navigation. Non-empty input is
// appended to the history.
func (r *lineReader) readInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}

	return input, nil
}

// saveHistory persists input history with owner-only permissions.
func (r *lineReader) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	r.line.WriteHistory(f)
}

// close saves history and restores the terminal.
func (r *lineReader) close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// replState holds state for an interactive chat session.
type replState struct {
	Session *session.Session
	Client  *backend.Client

	Quiet    bool
	Plain    bool
	Markdown bool

	StartTime  time.Time
	TurnCount  int
	TotalChars int

	// Cancel function for the in-flight reply
	CancelFunc context.CancelFunc

	Input *lineReader
}

// newReplState builds the REPL session from config and flags.
func newReplState(args Args) *replState {
	cfg := config.Global()
	client := newBackendClient(args)

	return &replState{
		Session:   session.New(client, resolveStreaming(args)),
		Client:    client,
		Quiet:     args.Quiet,
		Plain:     args.Plain || !IsStdoutTTY(),
		Markdown:  cfg.Chat.Markdown && !args.Plain && IsStdoutTTY(),
		StartTime: time.Now(),
		Input:     newLineReader(),
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command: a liner-based REPL over
// the backend session.
func HandleChatCommand(args Args) error {
	state := newReplState(args)
	defer state.Input.close()

	// Reachability check up front; a dead backend should fail fast, not
	// on the first message.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := state.Client.Ping(ctx)
	cancel()
	if err != nil {
		return askError(err)
	}

	if !state.Quiet {
		printWelcome(state)
	}

	// First Ctrl+C cancels the in-flight reply; at the prompt liner
	// surfaces it as ErrPromptAborted instead.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if state.CancelFunc != nil {
				state.CancelFunc()
				state.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := state.Input.readInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or a closed terminal
			fmt.Println()
			printExitSummary(state)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := handleSlashCommand(input, state)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				printExitSummary(state)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(state)
			return nil
		}

		if err := processTurn(state, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// TURN PROCESSING
// =============================================================================

// processTurn runs one chat turn and prints the reply.
func processTurn(state *replState, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	state.CancelFunc = cancel
	defer func() {
		state.CancelFunc = nil
		cancel()
	}()

	streaming := state.Session.Streaming()

	// Stream live only when nothing will be re-rendered afterwards
	streamLive := streaming && !state.Markdown
	state.Session.SetEvents(session.Events{
		OnToken: func(chunk, _ string) {
			if streamLive {
				streamToStdout(chunk)
			}
		},
	})

	fmt.Println()
	start := time.Now()

	err := state.Session.Submit(ctx, input)
	if err != nil {
		if backend.IsCanceled(err) {
			// Partial reply stays in the transcript and on screen
			fmt.Println()
			return nil
		}
		return err
	}

	reply := state.Session.Transcript().GetLastMessage().GetDisplayContent()

	if streamLive {
		fmt.Println()
	} else {
		displayResponse(reply, !state.Markdown)
	}
	fmt.Println()

	state.TurnCount++
	state.TotalChars += len(reply)

	if !state.Quiet {
		printTurnStats(state, streaming, time.Since(start))
	}

	return nil
}

// printTurnStats shows a brief stats line after each reply.
func printTurnStats(state *replState, streamed bool, elapsed time.Duration) {
	last := state.Session.Transcript().GetLastMessage()

	// Streamed turns carry chunk statistics on the message itself
	if streamed && last != nil {
		if line := last.FormatStats(); line != "" {
			fmt.Fprintf(os.Stderr, "%s %s\n", infoStyle.Render("[Stats]"), line)
			return
		}
	}

	fmt.Fprintf(os.Stderr, "%s %s chars | %s\n",
		infoStyle.Render("[Stats]"),
		formatNumber(len(last.GetDisplayContent())),
		elapsed.Round(time.Millisecond))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a slash command.
// Returns (keepGoing, error); keepGoing=false exits the REPL.
func handleSlashCommand(cmd string, state *replState) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?":
		printHelp()
		return true, nil

	case "/clear", "/c":
		if err := state.Session.Clear(); err != nil {
			return true, err
		}
		fmt.Println(commandStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/stream":
		state.Session.SetStreaming(!state.Session.Streaming())
		if state.Session.Streaming() {
			fmt.Println(commandStyle.Render("[Streaming on]"))
		} else {
			fmt.Println(commandStyle.Render("[Streaming off]"))
		}
		return true, nil

	case "/markdown", "/md":
		state.Markdown = !state.Markdown && IsStdoutTTY()
		if state.Markdown {
			fmt.Println(commandStyle.Render("[Markdown on]"))
		} else {
			fmt.Println(commandStyle.Render("[Markdown off]"))
		}
		return true, nil

	case "/status", "/s":
		printSessionStatus(state)
		return true, nil

	case "/history":
		printHistory(state)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", parts[0])
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(state *replState) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("chatterm interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Server:"),
		commandStyle.Render(state.Client.GetConfig().BaseURL))

	if state.Session.Streaming() {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Mode:"),
			commandStyle.Render("Streaming"))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Mode:"),
			commandStyle.Render("Whole responses"))
	}

	if state.Markdown {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Markdown:"),
			commandStyle.Render("On"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printHelp prints available REPL commands.
func printHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear conversation history"},
		{"/stream", "Toggle streaming mode"},
		{"/markdown, /md", "Toggle markdown rendering"},
		{"/status, /s", "Show session statistics"},
		{"/history", "Show conversation history"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-16s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current reply, Ctrl+D exits"))
	fmt.Println()
}

// printSessionStatus prints session statistics.
func printSessionStatus(state *replState) {
	elapsed := time.Since(state.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Server:"),
		commandStyle.Render(state.Client.GetConfig().BaseURL))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("History:"),
		state.Session.Transcript().MessageCount())
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		state.TurnCount)
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Reply chars:"),
		formatNumber(state.TotalChars))

	fmt.Println()
}

// printHistory prints the conversation so far, one line per message.
func printHistory(state *replState) {
	messages := state.Session.Transcript().GetHistory()
	if len(messages) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, msg := range messages {
		var role string
		switch msg.Role {
		case model.RoleUser:
			role = lipgloss.NewStyle().Foreground(styles.Cyan).Render("You")
		case model.RoleAssistant:
			role = lipgloss.NewStyle().Foreground(styles.Purple).Render("Assistant")
		case model.RoleSystem:
			role = lipgloss.NewStyle().Foreground(styles.Amber).Render("System")
		default:
			role = string(msg.Role)
		}

		content := util.TruncateRunes(msg.GetDisplayContent(), 100)
		content = strings.ReplaceAll(content, "\n", " ")

		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(state *replState) {
	if state.TurnCount == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(state.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		state.TurnCount)
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Reply chars:"),
		formatNumber(state.TotalChars))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		elapsed.String())

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
