// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package plog is the Logger façade contract of spec.md §4.K: it ties
// together snapshot capture, the HeapRingBuffer/SharedRingBuffer record
// transport, the Writer and MProc pipelines, and the NameRegistry into the
// push/push_wfc/flush/shutdown/set_process_name/set_thread_module surface
// the façade exposes.
package plog

import (
	"time"

	"code.hybscloud.com/plog/pipeline"
	"code.hybscloud.com/plog/ring"
	"code.hybscloud.com/plog/sink"
)

// Mode selects the data flow spec.md §2 describes.
type Mode int

const (
	// Sync runs producer -> formatter -> sink synchronously on the caller.
	Sync Mode = iota
	// Async runs producer -> BinarySnapshot -> HeapRingBuffer -> Writer
	// pipeline -> formatter -> sink.
	Async
	// MProc runs producer -> BinarySnapshot -> HeapRingBuffer -> MProc
	// pipeline -> SharedRingBuffer, consumed by the owning process's
	// Writer pipeline.
	MProc
)

// Config is the configuration surface the façade provides to the core
// (spec.md §6).
type Config struct {
	Mode Mode

	// Capacity is the HeapRingBuffer's (and, for the MProc owner, the
	// SharedRingBuffer's) slot count: a positive power of two, default
	// 8192.
	Capacity int
	// QueueFullPolicy governs push behavior when a ring is full.
	QueueFullPolicy ring.FullPolicy
	// ShadowTailEnabled turns on the consumer-published cheap-bound fast
	// path.
	ShadowTailEnabled bool
	// WFCEnabled makes PushWFC wait for its entry to be flushed. When it is
	// false, PushWFC returns as soon as the entry is queued, like Push.
	WFCEnabled bool
	// SharedMemoryName names the MProc SharedRingBuffer segment. Must
	// begin with "/". Required when Mode is MProc.
	SharedMemoryName string
	// NameRegistryCapacity bounds the process-name table and the
	// thread-module table, in every mode; default 256.
	NameRegistryCapacity int
	// PollInterval is the sleep between checks while Flush waits for a
	// ring to empty, and between polls of the SharedRingBuffer by an MProc
	// owner; default 1 microsecond.
	PollInterval time.Duration
	// PollTimeout bounds WaitForData and PushWFC waits, default 10ms.
	PollTimeout time.Duration

	// Formatter renders entries for sinks; defaults to pipeline.TextFormatter{}.
	Formatter pipeline.Formatter
	// Sinks receive formatted output; defaults to a single console sink on
	// os.Stdout.
	Sinks []sink.Sink
	// ErrSink receives internal failure reports (sink errors, formatter
	// panics); defaults to sink.Null{}.
	ErrSink sink.Sink

	// ProcessName seeds the façade's own process display name.
	ProcessName string
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 8192
	}
	if c.NameRegistryCapacity <= 0 {
		c.NameRegistryCapacity = 256
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Microsecond
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 10 * time.Millisecond
	}
	if c.Formatter == nil {
		c.Formatter = pipeline.TextFormatter{}
	}
	return c
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
