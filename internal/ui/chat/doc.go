// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
//
// The Model renders a scrollable transcript, a single-line input, and a
// status bar. It does not talk to the network itself: submitting input
// appends a user/assistant turn to the transcript and emits a
// StreamRequestMsg or ChatRequestMsg, which the hosting program answers
// with StreamTokenMsg/StreamCompleteMsg (streamed) or ChatReplyMsg
// (whole response). This keeps the view deterministic and testable.
//
// Streamed tokens are batched through a StreamingBuffer and rendered at
// a capped frame rate so fast backends do not flood the terminal.
package chat
