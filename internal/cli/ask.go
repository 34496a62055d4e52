// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler for the chatterm CLI.
//
// Command: ask
// Short:   Ask a single question and print the reply
//
// Examples:
//   chatterm ask "how do goroutines work?"
//   chatterm ask --no-stream "one word answer"
//   echo "explain this" | chatterm ask
//   chatterm ask --plain "machine readable" > reply.txt
//
// On a TTY the reply streams to the screen and, when markdown is enabled,
// is re-rendered with formatting once complete. Piped output is always
// the raw reply text.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/session"
)

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args Args) error {
	query := strings.TrimSpace(args.Query)

	// Piped stdin becomes the query when none was given on the command line
	if query == "" && !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
		if err == nil {
			query = strings.TrimSpace(string(data))
		}
	}
	if query == "" {
		return errors.New("no question given: chatterm ask \"your question\"")
	}

	client := newBackendClient(args)
	streaming := resolveStreaming(args)
	plain := args.Plain || !IsStdoutTTY()
	useMarkdown := config.Global().Chat.Markdown && !plain

	// Ctrl+C cancels the request; a partial streamed reply stays on screen
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(client, streaming)

	// With markdown the reply is collected and rendered once complete; the
	// raw stream would interleave badly with ANSI reformatting.
	streamLive := streaming && !useMarkdown
	sess.SetEvents(session.Events{
		OnToken: func(chunk, _ string) {
			if streamLive {
				streamToStdout(chunk)
			}
		},
	})

	start := time.Now()
	err := sess.Submit(ctx, query)
	if err != nil {
		if backend.IsCanceled(err) {
			fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			return nil
		}
		return askError(err)
	}

	reply := sess.Transcript().GetLastMessage().GetDisplayContent()

	if streamLive {
		// The stream already printed the reply; just close the line
		fmt.Println()
	} else {
		displayResponse(reply, plain)
	}

	if !args.Quiet && IsStderrTTY() {
		printAskStats(reply, streaming, time.Since(start))
	}

	return nil
}

// askError wraps a backend failure with an actionable hint.
func askError(err error) error {
	if backend.IsUnreachable(err) {
		return fmt.Errorf("%w\n\nIs the chat backend running? Check the URL with: chatterm config show", err)
	}
	if backend.IsTimeout(err) {
		return fmt.Errorf("%w\n\nThe backend took too long; raise server.timeout_seconds or retry", err)
	}
	return err
}

// printAskStats prints a one-line summary to stderr.
func printAskStats(reply string, streamed bool, elapsed time.Duration) {
	mode := "whole"
	if streamed {
		mode = "streamed"
	}

	fmt.Fprintf(os.Stderr, "%s %s chars | %s | %s\n",
		infoStyle.Render("[Stats]"),
		formatNumber(len(reply)),
		mode,
		elapsed.Round(time.Millisecond))
}
