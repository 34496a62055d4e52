// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Concurrency tests for the session package.
//
// Run with: go test -race ./internal/session/
package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSubmit_ConcurrentOnlyOneWins fires many submits at once; exactly one
// may run, the rest must fail with ErrBusy, and the transcript must end up
// with a single user/assistant pair.
func TestSubmit_ConcurrentOnlyOneWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	fake := &fakeBackend{reply: "winner"}
	fake.onRequest = func() {
		close(started)
		<-release
	}
	sess := New(fake, false)

	first := make(chan error, 1)
	go func() {
		first <- sess.Submit(context.Background(), "racing")
	}()
	<-started

	var wg sync.WaitGroup
	busyCount := make(chan int, 1)
	busy := 0
	var mu sync.Mutex

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sess.Submit(context.Background(), "loser"); errors.Is(err, ErrBusy) {
				mu.Lock()
				busy++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	busyCount <- busy

	close(release)
	require.NoError(t, <-first)
	require.Equal(t, 50, <-busyCount, "every concurrent submit should be rejected")
	require.Equal(t, 2, sess.Transcript().MessageCount())
}

// TestSession_ConcurrentStateAccess hammers the mode accessors while turns
// run, to catch races on the session's internal state.
func TestSession_ConcurrentStateAccess(t *testing.T) {
	fake := &fakeBackend{reply: "ok", chunks: []string{"o", "k"}}
	sess := New(fake, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)

		go func(streaming bool) {
			defer wg.Done()
			sess.SetStreaming(streaming)
		}(i%2 == 0)

		go func() {
			defer wg.Done()
			_ = sess.Streaming()
			_ = sess.Busy()
		}()

		go func() {
			defer wg.Done()
			// ErrBusy is acceptable under contention
			err := sess.Submit(context.Background(), "q")
			if err != nil {
				require.ErrorIs(t, err, ErrBusy)
			}
		}()
	}
	wg.Wait()

	require.False(t, sess.Busy(), "no turn should be left in flight")

	// Whatever interleaving happened, the transcript must alternate
	msgs := sess.Transcript().GetHistory()
	require.True(t, len(msgs)%2 == 0, "transcript must hold whole pairs")
}
