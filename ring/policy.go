// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

// FullPolicy governs what TryPush does when a ring buffer is observed
// full. Values match the on-wire SharedRingBuffer header encoding of
// spec.md §6 so a FullPolicy can be written straight into a Header.Policy
// field.
type FullPolicy uint32

const (
	// DropNewest rejects the incoming push, leaving existing entries intact.
	DropNewest FullPolicy = 0
	// DropOldest evicts the oldest unread entry to make room for the push.
	DropOldest FullPolicy = 1
	// Block makes Heap.TryPush wait with backoff until a slot is free or
	// Shutdown is called; that wait has no deadline. shmring.Shared.TryPush
	// returns ErrFull under Block, and pipeline.MProc retries it until its
	// MaxWait elapses.
	Block FullPolicy = 2
)

// String renders the policy for diagnostics.
func (p FullPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}
