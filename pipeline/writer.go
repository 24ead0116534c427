// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iobuf"

	"code.hybscloud.com/plog/internal/lfqcore"
	"code.hybscloud.com/plog/name"
	"code.hybscloud.com/plog/record"
	"code.hybscloud.com/plog/ring"
	"code.hybscloud.com/plog/sink"
)

// WriterStats are the atomic counters spec.md §7 requires steady-state
// errors be absorbed into rather than surfaced per call.
type WriterStats struct {
	Dropped         atomix.Uint64
	SinkErrors      atomix.Uint64
	FormatterPanics atomix.Uint64
}

// Writer is the consumer task of spec.md §4.H: a single task per logger
// that owns one ring buffer reference, one formatter, and a set of sinks.
type Writer struct {
	queue        *ring.Heap[record.Entry]
	formatter    Formatter
	names        *name.Registry
	sinks        []sink.Sink
	errSink      sink.Sink
	scratch      *iobuf.BoundedPool[[]byte]
	scratchSize  int
	pollInterval time.Duration
	maxWait      time.Duration
	running      atomix.Bool
	Stats        WriterStats
}

// WriterConfig configures a Writer.
type WriterConfig struct {
	Queue        *ring.Heap[record.Entry]
	Formatter    Formatter
	Names        *name.Registry // optional; passed through to Formatter.Render
	Sinks        []sink.Sink
	ErrSink      sink.Sink // defaults to sink.Null{} when nil
	ScratchSize  int       // per-entry rendering buffer size, default 512
	PollInterval time.Duration
	MaxWait      time.Duration
}

// NewWriter creates a Writer. Scratch rendering buffers are drawn from a
// bounded pool (code.hybscloud.com/iobuf) sized to the queue's capacity,
// so formatting never allocates on the hot path.
func NewWriter(cfg WriterConfig) *Writer {
	errSink := cfg.ErrSink
	if errSink == nil {
		errSink = sink.Null{}
	}
	scratchSize := cfg.ScratchSize
	if scratchSize <= 0 {
		scratchSize = 512
	}
	pool := iobuf.NewBoundedPool[[]byte](cfg.Queue.Cap())
	pool.Fill(func() []byte { return make([]byte, 0, scratchSize) })
	w := &Writer{
		queue:        cfg.Queue,
		formatter:    cfg.Formatter,
		names:        cfg.Names,
		sinks:        cfg.Sinks,
		errSink:      errSink,
		scratch:      pool,
		scratchSize:  scratchSize,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
	}
	w.running.Store(true)
	return w
}

// Run drains the queue until Shutdown is called and the queue is empty.
// It is meant to be run on a single dedicated goroutine.
func (w *Writer) Run() {
	for w.running.Load() {
		drained := w.drainOnce()
		if !drained {
			w.queue.WaitForData(w.maxWait)
		}
	}
	for w.drainOnce() {
	}
	for _, s := range w.sinks {
		s.Flush()
	}
}

// drainOnce pops and processes entries in a tight inner loop until the
// queue is empty, returning whether at least one entry was processed.
func (w *Writer) drainOnce() bool {
	processed := false
	for {
		e, ticket, err := w.queue.TryPopTicket()
		if err != nil {
			// lfqcore.IsWouldBlock distinguishes "queue observed empty" (a
			// control-flow signal: stop draining, wait for more) from a
			// genuine failure; TryPopTicket currently only ever returns the
			// former, but the check documents that the loop intentionally
			// treats any other error as reason to escalate rather than
			// silently stop.
			if !lfqcore.IsWouldBlock(err) {
				w.errSink.Write(record.Error, []byte("plog: unexpected queue error\n"))
			}
			return processed
		}
		processed = true
		w.process(&e, ticket)
	}
}

func (w *Writer) process(e *record.Entry, ticket uint64) {
	defer func() {
		if r := recover(); r != nil {
			w.Stats.FormatterPanics.Add(1)
			w.errSink.Write(record.Error, []byte("plog: formatter panic\n"))
		}
		w.queue.MarkFlushed(ticket)
	}()

	indirect, err := w.scratch.Get()
	var buf []byte
	if err == nil {
		buf = w.scratch.Value(indirect)[:0]
	} else {
		buf = make([]byte, 0, w.scratchSize)
	}
	buf = w.formatter.Render(e, w.names, buf)

	for _, s := range w.sinks {
		if werr := s.Write(e.Level, buf); werr != nil {
			w.Stats.SinkErrors.Add(1)
			w.errSink.Write(record.Error, []byte("plog: sink write failed\n"))
		}
	}

	if err == nil {
		w.scratch.SetValue(indirect, buf)
		w.scratch.Put(indirect)
	}
}

// Shutdown stops Run after the queue has been fully drained (spec.md §8
// invariant 8).
func (w *Writer) Shutdown() {
	w.running.Store(false)
	w.queue.Shutdown()
}

// Flush busy-polls IsEmpty and flushes every sink, returning once both are
// quiescent (spec.md §5).
func (w *Writer) Flush() {
	for !w.queue.IsEmpty() {
		time.Sleep(w.pollInterval)
	}
	for _, s := range w.sinks {
		s.Flush()
	}
}
