// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfqcore holds the pieces of the lock-free queue ecosystem that are
// genuinely shared across this module's ring-buffer implementations rather
// than specific to any one of them: cache-line padding, capacity rounding,
// and the ErrWouldBlock/IsWouldBlock control-flow classification that ring
// and shmring both alias their own "pop from an empty ring" errors to.
//
// The four-state slot protocol (Empty/Writing/Ready/Reading) that
// spec.md §4.D requires is not here; it lives in package ring (heap-backed)
// and package shmring (shared-memory-backed), since the two need slightly
// different atomics (in-process atomix words vs. mmap-resident words) and
// keeping one copy per backing store avoids a generic abstraction neither
// caller needs.
//
// Unlike code.hybscloud.com/lfq, the public package this one is grounded
// on, lfqcore is internal/ to plog: nothing outside this module can import
// it. So it does not carry that package's Queue/Producer/Consumer/Drainer
// vocabulary or its IsSemantic/IsNonFailure/RaceEnabled helpers — ring.Heap
// exposes a richer ticket-based TryPush/TryPopTicket API those interfaces
// can't express, and no caller in this tree needs the classifiers beyond
// IsWouldBlock (see DESIGN.md).
package lfqcore
