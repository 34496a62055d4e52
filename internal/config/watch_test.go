// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"testing"
)

func TestIsConfigFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/home/u/.chatterm/config.toml", true},
		{"/home/u/.chatterm/config.json", true},
		{"/home/u/.chatterm/history", false},
		{"/home/u/.chatterm/config.toml.swp", false},
		{"config.toml", true},
	}

	for _, tt := range tests {
		if got := isConfigFile(tt.path); got != tt.want {
			t.Errorf("isConfigFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherStop(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	// Stop before Start must be safe
	w.Stop()
}
