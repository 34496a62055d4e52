// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the chatterm TUI.
//
// # Key Types
//
//   - MessageBubble: renders a single message styled by role
//   - MessageList: renders a full transcript as a bubble stack
//   - Renderer: glamour-backed markdown renderer with plain-text fallback
//   - CodeBlock: chroma-backed syntax-highlighted code block
//
// Components are pure view helpers: they take data and a width and return
// styled strings. State lives in the chat model, not here.
package components
