// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package notify implements the Notification primitive of spec.md §4.J: a
// cross-platform "data available" wakeup with coalesced delivery (multiple
// signals between waits collapse into a single wakeup), used by the Writer
// and MProc pipelines' wait_for_data suspension point.
package notify

import "time"

// Signal is satisfied by every Notification implementation in this
// package, and each of them also satisfies ring.Signal structurally — no
// package here imports ring or shmring.
type Signal interface {
	// Signal wakes one pending (or future) Wait call. Repeated signals
	// before a Wait are coalesced into a single wakeup, matching the
	// edge-triggered "empty -> non-empty" semantics of a ring buffer
	// notification (spec.md §4.J).
	Signal()
	// Wait blocks until Signal has been called since the last Wait
	// returned, or maxWait elapses. Returns false on timeout. A true
	// return is a hint, not a guarantee: callers must re-check the
	// condition they were waiting on.
	Wait(maxWait time.Duration) bool
	// Close releases any OS resources held by the Signal.
	Close() error
}
