// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package notify

import (
	"errors"
	"time"
)

// ErrEventFDUnsupported is returned by NewEventFD on platforms without a
// native eventfd syscall (spec.md §9: the platform-specific branch is
// folded into the condvar fallback rather than given its own
// implementation per OS).
var ErrEventFDUnsupported = errors.New("notify: eventfd not supported on this platform")

// NewEventFD always fails on non-Linux platforms; callers should fall back
// to NewCondSignal.
func NewEventFD() (*EventFD, error) {
	return nil, ErrEventFDUnsupported
}

// EventFD is an unusable placeholder on non-Linux platforms, present only
// so cross-platform code can reference the type name.
type EventFD struct{}

// Fd always returns -1.
func (e *EventFD) Fd() int { return -1 }

// Signal is a no-op.
func (e *EventFD) Signal() {}

// Wait always returns false.
func (e *EventFD) Wait(_ time.Duration) bool { return false }

// Close is a no-op.
func (e *EventFD) Close() error { return nil }
