// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
//
// This file defines the keyboard shortcuts for the chat view using the
// bubbles/key package, which gives us help text generation for free.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines all keyboard shortcuts for the chat view.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Actions
	Submit key.Binding
	Cancel key.Binding
	Clear  key.Binding

	// Toggles
	ToggleMarkdown key.Binding
	ToggleStream   key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("ctrl+home", "scroll to top"),
		),
		End: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("ctrl+end", "scroll to bottom"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel stream"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear transcript"),
		),
		ToggleMarkdown: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "toggle markdown"),
		),
		ToggleStream: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle streaming"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.Clear, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Cancel, k.Clear},                    // actions
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End}, // navigation
		{k.ToggleMarkdown, k.ToggleStream},               // toggles
		{k.Help, k.Quit},                                 // application
	}
}

// HelpItem is one row in the help overlay.
type HelpItem struct {
	Key  string
	Desc string
}

// HelpSection is a titled group of help rows.
type HelpSection struct {
	Title string
	Items []HelpItem
}

// HelpSections returns the help overlay content.
func (k KeyMap) HelpSections() []HelpSection {
	return []HelpSection{
		{
			Title: "Chat",
			Items: []HelpItem{
				{Key: "enter", Desc: "Send message"},
				{Key: "esc", Desc: "Cancel in-flight response"},
				{Key: "ctrl+l", Desc: "Clear transcript"},
			},
		},
		{
			Title: "Navigation",
			Items: []HelpItem{
				{Key: "↑ / ↓", Desc: "Scroll one line"},
				{Key: "pgup / pgdn", Desc: "Scroll one page"},
				{Key: "ctrl+home / ctrl+end", Desc: "Jump to top / bottom"},
			},
		},
		{
			Title: "Display",
			Items: []HelpItem{
				{Key: "ctrl+o", Desc: "Toggle markdown rendering"},
				{Key: "ctrl+t", Desc: "Toggle streaming mode"},
			},
		},
		{
			Title: "Application",
			Items: []HelpItem{
				{Key: "ctrl+h", Desc: "Toggle this help"},
				{Key: "ctrl+c / ctrl+q", Desc: "Quit"},
			},
		},
	}
}
