// chatterm - a terminal chat client for a local chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/cli"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/chat"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming. The stream callback runs
// on its own goroutine and pushes messages into the Bubble Tea loop via
// p.Send; the mutex guards the reference during startup and shutdown.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOnError(cli.HandleAskCommand(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChatCommand(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatusCommand(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfigCommand(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// TUI
// =============================================================================

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg := config.Global()

	// Stdout belongs to the TUI, so debug output goes to a file instead
	if os.Getenv("CHATTERM_DEBUG") != "" {
		if dir, err := config.ConfigDir(); err == nil && config.EnsureConfigDir() == nil {
			if f, err := tea.LogToFile(filepath.Join(dir, "debug.log"), "chatterm"); err == nil {
				defer f.Close()
			}
		}
	}

	baseURL := cfg.Server.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: baseURL,
		Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	})

	theme := styles.NewTheme()
	chatModel := chat.New(theme)
	chatModel.SetServerURL(baseURL)
	if args.NoStream {
		chatModel.SetStreamMode(false)
	}
	if args.Stream {
		chatModel.SetStreamMode(true)
	}
	if args.Plain {
		chatModel.SetMarkdownMode(false)
	}

	m := Model{
		chatModel: chatModel,
		client:    client,
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Config edits apply to the running session without a restart
	watcher, werr := config.NewWatcher(func(updated *config.Config) {
		programMu.Lock()
		prog := programRef
		programMu.Unlock()
		if prog != nil {
			prog.Send(chat.ConfigReloadedMsg{
				Stream:         updated.Chat.Stream,
				Markdown:       updated.Chat.Markdown,
				ShowTimestamps: updated.UI.ShowTimestamps,
				ServerURL:      updated.Server.BaseURL,
			})
		}
	})
	if werr == nil {
		if err := watcher.Start(); err == nil {
			defer watcher.Stop()
		}
	}

	_, err := p.Run()

	programMu.Lock()
	programRef = nil
	programMu.Unlock()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APP MODEL
// =============================================================================

// Model is the top-level Bubble Tea model. It owns the backend client and
// executes chat requests; the chat.Model underneath it is transport-free
// and only exchanges request and result messages.
type Model struct {
	chatModel chat.Model
	client    *backend.Client

	// Cancel function for the in-flight request
	cancelStream context.CancelFunc
}

// Init starts the chat model and probes the backend.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.chatModel.Init(), m.pingBackend())
}

// pingBackend checks reachability and reports it to the chat model.
func (m Model) pingBackend() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := client.Ping(ctx)
		return chat.BackendStatusMsg{Reachable: err == nil, Err: err}
	}
}

// Update routes messages between the transport layer and the chat model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chat.StreamRequestMsg:
		return m.startStreaming(msg)

	case chat.ChatRequestMsg:
		return m.startWholeRequest(msg)

	case chat.CancelStreamMsg:
		if m.cancelStream != nil {
			m.cancelStream()
			m.cancelStream = nil
		}
		return m, nil

	case chat.StreamCompleteMsg, chat.StreamErrorMsg, chat.ChatReplyMsg:
		// The request is over; release its context before dropping the ref
		if m.cancelStream != nil {
			m.cancelStream()
			m.cancelStream = nil
		}
	}

	// Everything else belongs to the chat model
	newChatModel, cmd := m.chatModel.Update(msg)
	m.chatModel = newChatModel.(chat.Model)
	return m, cmd
}

// View renders the chat model.
func (m Model) View() string {
	return m.chatModel.View()
}

// =============================================================================
// STREAMING INTEGRATION
// =============================================================================

// startStreaming runs a streaming chat request. Tokens arrive on the
// request goroutine and are pushed into the program via p.Send.
func (m Model) startStreaming(msg chat.StreamRequestMsg) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	// Tell the chat model the stream is live before any token can arrive
	startMsg := chat.StreamStartMsg{
		MessageID: msg.MessageID,
		StartTime: time.Now(),
	}
	newChatModel, startCmd := m.chatModel.Update(startMsg)
	m.chatModel = newChatModel.(chat.Model)

	client := m.client
	messageID := msg.MessageID
	content := msg.Content

	streamCmd := func() tea.Msg {
		stats := model.NewStatistics()
		isFirst := true

		err := client.ChatStream(ctx, content, func(chunk string) error {
			if isFirst {
				stats.RecordFirstChunk()
			}

			programMu.Lock()
			p := programRef
			programMu.Unlock()
			if p != nil {
				p.Send(chat.StreamTokenMsg{
					MessageID: messageID,
					Token:     chunk,
					IsFirst:   isFirst,
				})
			}
			isFirst = false
			return nil
		})

		if err != nil {
			return chat.StreamErrorMsg{MessageID: messageID, Err: err}
		}

		stats.Finalize()
		return chat.StreamCompleteMsg{MessageID: messageID, Stats: stats}
	}

	return m, tea.Batch(startCmd, streamCmd)
}

// startWholeRequest runs a whole-response chat request.
func (m Model) startWholeRequest(msg chat.ChatRequestMsg) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	client := m.client
	messageID := msg.MessageID
	content := msg.Content

	return m, func() tea.Msg {
		reply, err := client.Chat(ctx, content)
		if err != nil {
			return chat.StreamErrorMsg{MessageID: messageID, Err: err}
		}
		return chat.ChatReplyMsg{MessageID: messageID, Reply: reply}
	}
}
