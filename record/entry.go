// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record defines LogEntry and Level: the payload type that moves
// through both the HeapRingBuffer and SharedRingBuffer (spec.md §3), and
// the severity enumeration the Writer pipeline and sinks key off of. It
// sits below package ring, package pipeline, package sink, and the root
// plog package so none of them need to import each other to share this
// type.
package record

import "code.hybscloud.com/plog/snapshot"

// Level is a log severity.
type Level uint8

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

// String renders the level for formatters.
func (l Level) String() string {
	switch l {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// EntrySize is the fixed on-wire size of Entry: 8B timestamp + 1B level +
// 3B padding + 4B thread id + 4B process id + 4B reserved + 256B
// BinarySnapshot (spec.md §6).
const EntrySize = 8 + 1 + 3 + 4 + 4 + 4 + snapshot.Capacity

// Entry is LogEntry (spec.md §3): a fixed-size record with no outboard
// allocation, the payload type for both HeapRingBuffer and
// SharedRingBuffer.
type Entry struct {
	Timestamp int64 // nanoseconds since the Unix epoch
	Level     Level
	_         [3]byte
	ThreadID  uint32
	ProcessID uint32
	_reserved uint32
	Snapshot  snapshot.Snapshot
}
