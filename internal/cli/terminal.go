// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the chatterm CLI.
//
// TTY detection decides whether to render markdown, use colors, and show
// the interactive prompt. Piped output gets plain text so the reply can
// be fed into other tools unchanged.
package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
// Colored and markdown output is gated on this.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTTY returns true if stderr is a terminal.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// =============================================================================
// TERMINAL SIZE
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the narrowest width used for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width, clamped to
// MinTerminalWidth, or DefaultTerminalWidth when detection fails.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR SUPPORT
// =============================================================================

var (
	colorOnce    sync.Once
	colorProfile termenv.Profile
)

// ColorProfile returns the detected terminal color profile, honoring
// NO_COLOR and non-TTY stdout.
func ColorProfile() termenv.Profile {
	colorOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" || !IsStdoutTTY() {
			colorProfile = termenv.Ascii
			return
		}
		colorProfile = termenv.ColorProfile()
	})
	return colorProfile
}

// ColorsEnabled reports whether output should use colors.
func ColorsEnabled() bool {
	return ColorProfile() != termenv.Ascii
}
