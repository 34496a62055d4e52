// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the chat
// backend service.
package backend

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the JSON body for both /api/chat and /api/chat-stream.
type ChatRequest struct {
	Message string `json:"message"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the JSON reply from /api/chat.
// /api/chat-stream has no envelope; its body is the reply text itself.
type ChatResponse struct {
	Reply string `json:"reply"`
}
