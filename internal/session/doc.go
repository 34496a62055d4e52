// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives a chat turn from user input to finished reply.
//
// Session is the shared submit pipeline behind every front end (full-screen
// UI, one-shot ask, and the line REPL). It owns the transcript, trims and
// validates input, appends the user/assistant message pair before the
// request goes out, and fills the assistant placeholder either atomically
// (whole-response mode) or chunk by chunk (streaming mode).
//
// # Usage
//
//	sess := session.New(client, true)
//	sess.SetEvents(session.Events{
//	    OnToken: func(chunk, content string) { fmt.Print(chunk) },
//	})
//	if err := sess.Submit(ctx, line); err != nil {
//	    if errors.Is(err, session.ErrEmptyInput) {
//	        // ignore
//	    }
//	}
package session
