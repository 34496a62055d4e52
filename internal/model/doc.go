// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and messages.
//
// This package defines the core domain types used throughout the application
// for representing a chat session and its messages.
//
// # Key Types
//
//   - Transcript: ordered, append-only container for one chat session
//   - Message: single message with role, content, and streaming state
//   - Role: message role enumeration (user, assistant, system)
//   - Statistics: per-reply timing
//
// # Usage
//
// Start a transcript and submit a turn:
//
//	tr := model.NewTranscript()
//	user, assistant := tr.BeginTurn("Hello!")
//	assistant.AppendToken("Hi ")
//	assistant.AppendToken("there")
//	assistant.FinalizeStream(nil)
//
// While an assistant message is streaming, GetDisplayContent returns the
// text accumulated so far; after FinalizeStream it returns the final
// Content. Streamed content is cumulative and only ever grows.
package model
