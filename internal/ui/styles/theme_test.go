// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
}

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)

	if theme.Width != 120 {
		t.Errorf("Expected width 120, got %d", theme.Width)
	}
	if theme.Height != 40 {
		t.Errorf("Expected height 40, got %d", theme.Height)
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		name      string
		render    func(string) string
		indicator string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("something happened")
			if !strings.Contains(out, tt.indicator) {
				t.Errorf("Expected output to contain %q, got %q", tt.indicator, out)
			}
			if !strings.Contains(out, "something happened") {
				t.Errorf("Expected output to contain the message, got %q", out)
			}
		})
	}
}
