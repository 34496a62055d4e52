// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the chatterm TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Renderer renders markdown for terminal display using glamour.
// A nil or failed renderer degrades to returning the input unchanged,
// so callers never have to branch on initialization errors.
type Renderer struct {
	tr    *glamour.TermRenderer
	width int
}

// NewRenderer creates a markdown renderer wrapping at the given width.
// If glamour initialization fails the renderer still works and passes
// content through untouched.
func NewRenderer(width int) *Renderer {
	if width < 20 {
		width = 20
	}

	r := &Renderer{width: width}
	r.tr = newTermRenderer(width)
	return r
}

// newTermRenderer builds the underlying glamour renderer.
// Returns nil on failure; Render treats nil as plain-text mode.
func newTermRenderer(width int) *glamour.TermRenderer {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return tr
}

// SetWidth rebuilds the renderer for a new wrap width.
// No-op if the width is unchanged.
func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.tr = newTermRenderer(width)
}

// Width returns the current wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render renders markdown content for the terminal.
// Returns the input unchanged when rendering is unavailable or fails.
func (r *Renderer) Render(content string) string {
	if r == nil || r.tr == nil {
		return content
	}

	rendered, err := r.tr.Render(content)
	if err != nil {
		return content
	}

	// Glamour pads output with blank lines; trim so bubbles stay tight.
	return strings.Trim(rendered, "\n")
}
