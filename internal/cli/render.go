// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Reply rendering for CLI output.
//
// On a TTY, completed replies are rendered as markdown via glamour, with
// fenced code blocks highlighted. Piped output is passed through verbatim.
package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

var (
	rendererOnce sync.Once
	mdRenderer   *glamour.TermRenderer
)

// getRenderer returns the lazily-built glamour renderer, or nil when the
// renderer could not be constructed. Callers fall back to plain output.
func getRenderer() *glamour.TermRenderer {
	rendererOnce.Do(func() {
		wrap := GetTerminalWidth()
		if wrap > 100 {
			wrap = 100
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			mdRenderer = r
		}
	})
	return mdRenderer
}

// renderMarkdown renders content as markdown, falling back to the raw
// text when rendering is unavailable or fails.
func renderMarkdown(content string) string {
	r := getRenderer()
	if r == nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// OUTPUT
// =============================================================================

// displayResponse prints a completed reply, markdown-rendered when stdout
// is a TTY and plain mode is off.
func displayResponse(content string, plain bool) {
	if !plain && IsStdoutTTY() {
		fmt.Print(renderMarkdown(content))
		return
	}
	fmt.Println(content)
}

// streamToStdout writes a chunk as-is and flushes immediately so the
// reply grows on screen as it arrives.
func streamToStdout(chunk string) {
	fmt.Print(chunk)
	os.Stdout.Sync()
}
