// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for chatterm.
//
// This file implements viewport optimization to reduce redundant viewport
// updates during streaming. The ViewportOptimizer tracks content changes
// and only triggers redraws when the content actually changed.
package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// =============================================================================
// VIEWPORT OPTIMIZER
// =============================================================================

// ViewportOptimizer reduces redundant viewport updates by tracking content
// changes. During streaming the view may attempt to update hundreds of
// times per second with identical content; a fast content hash detects
// actual changes and skips the rest.
//
// Thread-safety: All operations are protected by a mutex.
type ViewportOptimizer struct {
	mu              sync.RWMutex
	lastContentHash string    // SHA-256 hash of last rendered content
	lastUpdateTime  time.Time // Time of last update
	dirty           bool      // Whether content has changed since last render
	updateCount     uint64    // Total update attempts
	skipCount       uint64    // Updates skipped due to no change
}

// NewViewportOptimizer creates a new viewport optimizer.
func NewViewportOptimizer() *ViewportOptimizer {
	return &ViewportOptimizer{
		lastUpdateTime: time.Now(),
		dirty:          true, // Start dirty to force initial render
	}
}

// ShouldUpdate returns true if the viewport needs to be redrawn.
// Hash comparison is reliable where length checks are not: streamed
// content can change without changing length.
// Thread-safe.
func (vo *ViewportOptimizer) ShouldUpdate(newContent string) bool {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.updateCount++

	// First update always proceeds
	if vo.updateCount == 1 {
		vo.lastContentHash = hashContent(newContent)
		vo.lastUpdateTime = time.Now()
		vo.dirty = true
		return true
	}

	newHash := hashContent(newContent)
	if newHash == vo.lastContentHash {
		vo.skipCount++
		return false
	}

	vo.lastContentHash = newHash
	vo.lastUpdateTime = time.Now()
	vo.dirty = true

	return true
}

// MarkClean marks the viewport as up-to-date after a render. Thread-safe.
func (vo *ViewportOptimizer) MarkClean() {
	vo.mu.Lock()
	defer vo.mu.Unlock()
	vo.dirty = false
}

// IsDirty returns true if the viewport has pending changes. Thread-safe.
func (vo *ViewportOptimizer) IsDirty() bool {
	vo.mu.RLock()
	defer vo.mu.RUnlock()
	return vo.dirty
}

// Reset clears the optimizer state. Counters are kept for metrics.
// Thread-safe.
func (vo *ViewportOptimizer) Reset() {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.lastContentHash = ""
	vo.lastUpdateTime = time.Now()
	vo.dirty = true
}

// GetStats returns (totalUpdates, skippedUpdates, efficiency%).
// Thread-safe.
func (vo *ViewportOptimizer) GetStats() (total, skipped uint64, efficiency float64) {
	vo.mu.RLock()
	defer vo.mu.RUnlock()

	total = vo.updateCount
	skipped = vo.skipCount

	if total > 0 {
		efficiency = float64(skipped) / float64(total) * 100.0
	}

	return
}

// ForceUpdate forces the next update to proceed regardless of content.
// Use after a resize, where identical content still needs a redraw.
// Thread-safe.
func (vo *ViewportOptimizer) ForceUpdate() {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.lastContentHash = ""
	vo.dirty = true
}

// hashContent computes a SHA-256 hash of the content for change detection.
func hashContent(content string) string {
	if content == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
