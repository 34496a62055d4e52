// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestCodeBlockRenderContainsCode(t *testing.T) {
	cb := NewCodeBlock("go", "package main")
	cb.SetMaxWidth(100)

	view := cb.Render()
	if view == "" {
		t.Fatal("Render returned empty string")
	}
	// ANSI escapes interleave with the source, but the language badge survives
	if !strings.Contains(view, "go") {
		t.Error("Expected rendered block to contain the language badge")
	}
}

func TestCodeBlockEmptyLanguage(t *testing.T) {
	cb := NewCodeBlock("", "x := 1")
	view := cb.Render()
	if view == "" {
		t.Error("Expected non-empty render for unlabeled code")
	}
}

func TestParseCodeBlocks(t *testing.T) {
	input := "before\n```go\nfmt.Println(1)\n```\nafter"
	result := ParseCodeBlocks(input, 80)

	if !strings.Contains(result, "before") {
		t.Error("Expected text before the fence to survive")
	}
	if !strings.Contains(result, "after") {
		t.Error("Expected text after the fence to survive")
	}
	if strings.Contains(result, "```") {
		t.Error("Expected fences to be consumed")
	}
}

func TestParseCodeBlocksUnclosed(t *testing.T) {
	// Streaming often cuts off mid-fence; the partial block still renders
	input := "text\n```python\nprint(1)"
	result := ParseCodeBlocks(input, 80)

	if !strings.Contains(result, "text") {
		t.Error("Expected leading text to survive")
	}
	if result == input {
		t.Error("Expected unclosed block to be rendered, not passed through")
	}
}

func TestParseInlineCode(t *testing.T) {
	result := ParseInlineCode("use `go build` here")
	if !strings.Contains(result, "go build") {
		t.Errorf("Expected inline code content to survive, got %q", result)
	}
	if strings.Contains(result, "`") {
		t.Error("Expected backticks to be consumed")
	}
}

func TestParseInlineCodeUnclosed(t *testing.T) {
	result := ParseInlineCode("dangling `tick")
	if !strings.Contains(result, "`tick") {
		t.Errorf("Expected unclosed backtick to pass through literally, got %q", result)
	}
}

func TestDetectLanguage(t *testing.T) {
	// Analysis is heuristic; it just must not panic and should return
	// something for obviously shaped code.
	_ = detectLanguage("#!/bin/bash\necho hi")
	_ = detectLanguage("")
}
