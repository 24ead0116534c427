// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package notify

// NewCrossProcess returns the best available cross-process Signal: an
// EventFD on Linux, or a CondSignal fallback elsewhere (spec.md §9).
// Cross-process delivery additionally requires the underlying descriptor
// or condvar to live in shared memory, which is shmring's concern; this
// constructor only picks the mechanism.
func NewCrossProcess() Signal {
	if efd, err := NewEventFD(); err == nil {
		return efd
	}
	return NewCondSignal()
}

// NewInProcess returns the lightest-weight Signal suitable for a
// same-process HeapRingBuffer consumer.
func NewInProcess() Signal {
	return NewChanSignal()
}
