// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring implements the lock-free record-transport fabric: the
// per-slot SlotStateMachine (spec.md §4.D) and the heap-backed HeapRingBuffer
// (spec.md §4.E) built on top of it. The algorithm is the classic bounded
// MPMC protocol the teacher's mpmc_seq.go queues use (CAS on a cursor,
// paired with a per-slot sequence number), generalized with the explicit
// four-state SlotStatus spec.md describes and an optional shadow-tail
// fast path grounded on the teacher's spsc.go cached-cursor optimization.
package ring

// SlotState is the observable state of one ring slot (spec.md §4.D).
type SlotState uint32

const (
	// Empty: no data; a producer may claim the slot once its sequence
	// matches the producer cursor.
	Empty SlotState = iota
	// Writing: a producer has claimed the slot and is copying the payload in.
	Writing
	// Ready: the payload is published; a consumer may claim the slot once
	// its sequence matches the consumer cursor plus one.
	Ready
	// Reading: a consumer has claimed the slot and is copying the payload out.
	Reading
)

// String renders the state for diagnostics.
func (s SlotState) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Writing:
		return "Writing"
	case Ready:
		return "Ready"
	case Reading:
		return "Reading"
	default:
		return "Unknown"
	}
}
