// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"time"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/plog/internal/lfqcore"
	"code.hybscloud.com/plog/name"
	"code.hybscloud.com/plog/record"
	"code.hybscloud.com/plog/shmring"
	"code.hybscloud.com/plog/sink"
)

// SharedReaderStats mirrors WriterStats for the MProc owner's consumer loop.
type SharedReaderStats struct {
	SinkErrors      atomix.Uint64
	FormatterPanics atomix.Uint64
}

// SharedReader is the owner side of the MProc pipeline (spec.md §4.I): it
// polls a SharedRingBuffer instead of a HeapRingBuffer, but otherwise runs
// the same deserialize -> format -> sink fan-out as Writer. Kept as a
// separate type rather than generalizing Writer over an interface, since
// the two sources (a Go-resident ring.Heap and raw mmap'd bytes behind
// shmring.Shared) have different popping APIs (TryPopTicket vs TryPop into
// a caller-owned byte buffer).
type SharedReader struct {
	shared       *shmring.Shared
	formatter    Formatter
	names        *name.Registry
	sinks        []sink.Sink
	errSink      sink.Sink
	pollInterval time.Duration
	running      atomix.Bool
	Stats        SharedReaderStats
}

// SharedReaderConfig configures a SharedReader.
type SharedReaderConfig struct {
	Shared       *shmring.Shared
	Formatter    Formatter
	Names        *name.Registry // optional; passed through to Formatter.Render
	Sinks        []sink.Sink
	ErrSink      sink.Sink
	PollInterval time.Duration // default 1ms
}

// NewSharedReader creates a SharedReader.
func NewSharedReader(cfg SharedReaderConfig) *SharedReader {
	errSink := cfg.ErrSink
	if errSink == nil {
		errSink = sink.Null{}
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Millisecond
	}
	r := &SharedReader{
		shared:       cfg.Shared,
		formatter:    cfg.Formatter,
		names:        cfg.Names,
		sinks:        cfg.Sinks,
		errSink:      errSink,
		pollInterval: pollInterval,
	}
	r.running.Store(true)
	return r
}

// Run polls the shared ring until Shutdown is called and the ring is
// empty. SharedRingBuffer has no cross-process wakeup wired to it by
// default (spec.md §9 leaves cross-process notification to EventFD, which
// requires the owner and producer to agree on a descriptor out of band),
// so this loop polls on pollInterval rather than blocking on a Signal.
func (r *SharedReader) Run() {
	var wire [record.EntrySize]byte
	for r.running.Load() {
		if !r.drainOnce(&wire) {
			time.Sleep(r.pollInterval)
		}
	}
	for r.drainOnce(&wire) {
	}
	for _, s := range r.sinks {
		s.Flush()
	}
}

func (r *SharedReader) drainOnce(wire *[record.EntrySize]byte) bool {
	processed := false
	for {
		_, err := r.shared.TryPop(wire[:])
		if err != nil {
			if !lfqcore.IsWouldBlock(err) {
				r.errSink.Write(record.Error, []byte("plog: unexpected shared ring error\n"))
			}
			return processed
		}
		processed = true
		r.process(wire)
	}
}

func (r *SharedReader) process(wire *[record.EntrySize]byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Stats.FormatterPanics.Add(1)
			r.errSink.Write(record.Error, []byte("plog: formatter panic\n"))
		}
	}()

	var e record.Entry
	e.DeserializeFrom(wire[:])
	buf := make([]byte, 0, 512)
	buf = r.formatter.Render(&e, r.names, buf)
	for _, s := range r.sinks {
		if werr := s.Write(e.Level, buf); werr != nil {
			r.Stats.SinkErrors.Add(1)
			r.errSink.Write(record.Error, []byte("plog: sink write failed\n"))
		}
	}
}

// Shutdown stops Run after the shared ring has been fully drained.
func (r *SharedReader) Shutdown() {
	r.running.Store(false)
}

// Flush busy-polls until the shared ring is observed empty, then flushes
// every sink.
func (r *SharedReader) Flush() {
	for !r.shared.IsEmpty() {
		time.Sleep(r.pollInterval)
	}
	for _, s := range r.sinks {
		s.Flush()
	}
}
