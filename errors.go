// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plog

import "errors"

// Error taxonomy (spec.md §7). Creation-time errors (the ones below, plus
// shmring's ErrInvalidFormat, ErrVersionMismatch, ErrCapacityMismatch and
// ErrNotFound, and OS errors from creating or mapping a segment, which are
// returned as they are) are surfaced to the caller of the logger
// constructor. A full ring (OverflowDrop) and a failed sink write
// (SinkError) are absorbed into Stats counters and do not fail a Push
// call. An argument that does not fit in the snapshot is omitted without
// being counted. After Shutdown, Push and PushWFC return
// ring.ErrShuttingDown.
var (
	// ErrCapacity is returned at construction for a positive capacity that
	// is not a power of two. A zero or negative capacity selects the
	// default, 8192.
	ErrCapacity = errors.New("plog: capacity must be a positive power of two")
	// ErrSharedMemoryName is returned at construction when Mode is MProc
	// and SharedMemoryName is empty or does not begin with "/".
	ErrSharedMemoryName = errors.New("plog: shared_memory_name must begin with \"/\"")
	// ErrOwnerCannotPush is returned by Push/PushWFC on a Core built with
	// NewOwner in MProc mode: the owner side only consumes the
	// SharedRingBuffer. Processes that want to log into it must attach
	// with NewProducer.
	ErrOwnerCannotPush = errors.New("plog: an MProc owner Core only consumes; use NewProducer to push")
)
