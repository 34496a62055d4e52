// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared helpers for CLI command handlers.
package cli

import (
	"strings"
	"time"

	"github.com/jeranaias/chatterm/internal/backend"
	"github.com/jeranaias/chatterm/internal/config"
)

// newBackendClient builds a backend client from config, with the --server
// flag taking precedence over the config file and environment.
func newBackendClient(args Args) *backend.Client {
	cfg := config.Global()

	baseURL := cfg.Server.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}

	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: baseURL,
		Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	})
}

// resolveStreaming decides streaming mode from config and flags.
// Flags win over config; --no-stream wins over --stream.
func resolveStreaming(args Args) bool {
	stream := config.Global().Chat.Stream
	if args.Stream {
		stream = true
	}
	if args.NoStream {
		stream = false
	}
	return stream
}

// formatNumber formats an integer with commas for thousands.
func formatNumber(n int) string {
	s := []byte(nil)
	if n < 0 {
		s = append(s, '-')
		n = -n
	}

	digits := []byte(nil)
	for {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
		if n == 0 {
			break
		}
	}

	var out strings.Builder
	out.Write(s)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteByte(d)
	}
	return out.String()
}
