// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfqcore provides the small set of ecosystem primitives shared by
// every lock-free ring-buffer variant in this module: the cache-line padding
// type, capacity normalization, and the ErrWouldBlock classification. The
// slot-level algorithms themselves
// (the four-state producer/consumer protocol) live in package ring and
// package shmring, grounded on the same CAS/sequence discipline this package's
// sibling, code.hybscloud.com/lfq, uses throughout its MPSCSeq/MPMCSeq
// variants.
package lfqcore

// RoundToPow2 rounds n up to the next power of 2. Capacities below 2 round
// up to 2, matching the ring buffer's invariant that capacity is never 0 or 1.
func RoundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// Pad is cache line padding to prevent false sharing between adjacent
// atomic cursors and counters.
type Pad [64]byte
