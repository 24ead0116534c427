// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package notify

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// EventFD is the Linux eventfd-backed Signal: the only mechanism of
// spec.md §4.J's "eventfd / pipe-self-signal / condvar fallback" list that
// is natively poll()-able across process boundaries, making it the
// notification handle the SharedRingBuffer Header (spec.md §6) carries.
type EventFD struct {
	fd int
}

// NewEventFD creates a nonblocking, close-on-exec eventfd.
func NewEventFD() (*EventFD, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &EventFD{fd: fd}, nil
}

// OpenEventFD wraps an existing eventfd descriptor, e.g. one inherited via
// the SharedRingBuffer Header's notification handle field.
func OpenEventFD(fd int) *EventFD {
	return &EventFD{fd: fd}
}

// Fd returns the underlying file descriptor, for embedding in a shared
// memory Header.
func (e *EventFD) Fd() int { return e.fd }

// Signal implements Signal.
func (e *EventFD) Signal() {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, _ = unix.Write(e.fd, buf[:])
}

// Wait implements Signal.
func (e *EventFD) Wait(maxWait time.Duration) bool {
	timeoutMs := int(maxWait / time.Millisecond)
	if maxWait < 0 {
		timeoutMs = -1
	}
	pfds := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfds, timeoutMs)
	if err != nil || n <= 0 {
		return false
	}
	var buf [8]byte
	_, _ = unix.Read(e.fd, buf[:])
	return true
}

// Close implements Signal.
func (e *EventFD) Close() error {
	return unix.Close(e.fd)
}
