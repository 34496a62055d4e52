// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the chat
// backend service.
package backend

import (
	"context"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// readBufferSize is the read granularity for streaming bodies. Chunk
// boundaries on the wire carry no meaning, so any size is correct; small
// reads keep first paint snappy on slow backends.
const readBufferSize = 4096

// StreamReader reads a plain-text streaming reply body chunk by chunk.
type StreamReader struct {
	reader io.Reader
	buf    []byte
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	chunkCount  int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: r,
		buf:    make([]byte, readBufferSize),
	}
}

// Process reads the stream and calls the callback for each non-empty chunk.
// Blocks until the body closes, the context is cancelled, or the callback
// returns an error. A clean close of the body is a normal end of reply.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if chunk != "" {
				if cbErr := callback(chunk); cbErr != nil {
					return cbErr
				}
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return &ClientError{Type: ErrTypeUnreachable, Message: "stream read failed", Cause: err}
			}
		}
	}
}

// readChunk reads a single chunk from the body. The returned string may be
// non-empty even when err is non-nil (a final partial read before EOF).
func (s *StreamReader) readChunk() (string, error) {
	n, err := s.reader.Read(s.buf)
	if n == 0 {
		return "", err
	}

	chunk := string(s.buf[:n])
	s.accumulator.WriteString(chunk)
	s.chunkCount++
	return chunk, err
}

// GetAccumulated returns all content read so far.
func (s *StreamReader) GetAccumulated() string {
	return s.accumulator.String()
}

// GetChunkCount returns the number of chunks delivered.
func (s *StreamReader) GetChunkCount() int {
	return s.chunkCount
}

// =============================================================================
// STREAM STATISTICS
// =============================================================================

// StreamStats holds timing collected during streaming.
type StreamStats struct {
	StartTime      time.Time
	FirstChunkTime time.Time
	EndTime        time.Time

	// Counts
	Chunks int
	Bytes  int

	// Computed
	TTFC    time.Duration // Time to first chunk
	Elapsed time.Duration
}

// NewStreamStats creates a new StreamStats with start time set.
func NewStreamStats() *StreamStats {
	return &StreamStats{
		StartTime: time.Now(),
	}
}

// RecordChunk accounts for one received chunk.
func (s *StreamStats) RecordChunk(chunk string) {
	if s.FirstChunkTime.IsZero() {
		s.FirstChunkTime = time.Now()
		s.TTFC = s.FirstChunkTime.Sub(s.StartTime)
	}
	s.Chunks++
	s.Bytes += len(chunk)
}

// Finalize marks the end of the stream and computes elapsed time.
func (s *StreamStats) Finalize() {
	s.EndTime = time.Now()
	s.Elapsed = s.EndTime.Sub(s.StartTime)
}

// Format returns a compact one-line summary.
func (s *StreamStats) Format() string {
	return formatStatsDuration(s.Elapsed.Seconds()) + " | " +
		formatStatsInt(s.Chunks) + " chunks | " +
		formatStatsInt(s.Bytes) + " bytes | " +
		"TTFC " + formatStatsInt(int(s.TTFC.Milliseconds())) + "ms"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatStatsInt formats an integer without using fmt.
func formatStatsInt(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	if negative {
		return "-" + string(digits)
	}
	return string(digits)
}

// formatStatsFloat formats a float with one decimal place.
func formatStatsFloat(f float64) string {
	whole := int(f)
	frac := int((f - float64(whole)) * 10)
	if frac < 0 {
		frac = -frac
	}
	return formatStatsInt(whole) + "." + formatStatsInt(frac)
}

// formatStatsDuration formats seconds as a nice duration string.
func formatStatsDuration(seconds float64) string {
	if seconds < 1 {
		ms := int(seconds * 1000)
		return formatStatsInt(ms) + "ms"
	}
	return formatStatsFloat(seconds) + "s"
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects streamed chunks into the full reply and tracks
// timing. Safe for single-goroutine use; wrap externally if shared.
type StreamAccumulator struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	content strings.Builder
	Stats   *StreamStats
	Done    bool
	Error   error
}

// NewStreamAccumulator creates a new accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{
		Stats: NewStreamStats(),
	}
}

// Add appends one chunk of reply text.
func (a *StreamAccumulator) Add(chunk string) {
	a.Stats.RecordChunk(chunk)
	a.content.WriteString(chunk)
}

// Finish marks the stream complete, recording any terminal error.
func (a *StreamAccumulator) Finish(err error) {
	a.Done = true
	a.Error = err
	a.Stats.Finalize()
}

// GetContent returns the accumulated reply so far.
func (a *StreamAccumulator) GetContent() string {
	return a.content.String()
}

// IsDone returns whether streaming is complete.
func (a *StreamAccumulator) IsDone() bool {
	return a.Done
}

// GetError returns any error that occurred.
func (a *StreamAccumulator) GetError() error {
	return a.Error
}

// GetStats returns the collected statistics.
func (a *StreamAccumulator) GetStats() *StreamStats {
	return a.Stats
}
