// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatterm command-line interface: argument
// parsing, the one-shot ask command, the interactive REPL, and the small
// status and config commands. The full-screen TUI lives in internal/ui
// and is launched from main.
package cli
