// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the chat
// backend service.
//
// The backend exposes two endpoints: POST /api/chat returns the whole reply
// as a single JSON document, and POST /api/chat-stream returns the reply as
// a plain-text body emitted in arbitrary chunks. Chunk boundaries carry no
// meaning; the reply ends when the body closes.
//
// # Key Types
//
//   - Client: HTTP client for both endpoints
//   - ClientConfig: connection settings with sensible defaults
//   - ClientError: typed error with ErrorType classification
//   - StreamEvent: a single delivery on the channel returned by ChatStreamChan
//
// # Usage
//
// Create a client and send a message:
//
//	client := backend.NewClient()
//	reply, err := client.Chat(ctx, "hello")
//
// Or stream the reply chunk by chunk:
//
//	err := client.ChatStream(ctx, "hello", func(chunk string) error {
//	    fmt.Print(chunk)
//	    return nil
//	})
package backend
