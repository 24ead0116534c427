// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"errors"

	"code.hybscloud.com/plog/internal/lfqcore"
)

// ErrEmpty is returned by TryPop when the ring holds no entries.
var ErrEmpty = lfqcore.ErrWouldBlock

// ErrFull is returned by TryPush under the DropNewest policy when the ring
// is observed full; the pushed entry is discarded (spec.md §8 Scenario 1).
var ErrFull = errors.New("ring: full, entry dropped")

// ErrTimeout is returned by PushWFC when the bounded wait elapses before
// the entry is observed flushed. (WaitForData reports a timeout as false.)
var ErrTimeout = errors.New("ring: wait deadline exceeded")

// ErrShuttingDown is returned by TryPush once Shutdown has been called.
var ErrShuttingDown = errors.New("ring: shutting down")
