// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfqcore

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates the operation cannot proceed immediately. In this
// module it means a pop found the ring empty: ring.ErrEmpty and
// shmring.ErrEmpty are both this value. A full ring is reported by
// ring.ErrFull / shmring.ErrFull instead.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.TryPop()
//	    if err == nil {
//	        backoff.Reset()
//	        use(v)
//	        continue
//	    }
//	    if lfqcore.IsWouldBlock(err) {
//	        backoff.Wait()  // Nothing to read yet
//	        continue
//	    }
//	    return err  // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support. Used by the
// Writer and SharedReader drain loops to tell "ring observed empty" apart
// from an error that should be escalated rather than silently absorbed.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}
