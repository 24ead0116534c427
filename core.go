// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plog

import (
	"fmt"
	"os"
	"time"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/plog/name"
	"code.hybscloud.com/plog/notify"
	"code.hybscloud.com/plog/pipeline"
	"code.hybscloud.com/plog/record"
	"code.hybscloud.com/plog/ring"
	"code.hybscloud.com/plog/shmring"
	"code.hybscloud.com/plog/sink"
	"code.hybscloud.com/plog/snapshot"
)

// Stats aggregates the counters spec.md §7 requires steady-state errors be
// absorbed into rather than surfaced per call.
type Stats struct {
	// OverflowDrop counts entries dropped at TryPush time because the
	// local HeapRingBuffer was full under DropNewest.
	OverflowDrop atomix.Uint64
	// SinkErrors counts failed sink.Write calls.
	SinkErrors atomix.Uint64
	// FormatterPanics is reserved for recovered Formatter panics; Core
	// itself never increments it. StatsSnapshot adds the Writer's or
	// SharedReader's own count.
	FormatterPanics atomix.Uint64
	// SharedDropped is reserved for entries dropped pushing into a
	// SharedRingBuffer; Core itself never increments it. StatsSnapshot
	// reports the MProc pipeline's own count instead.
	SharedDropped atomix.Uint64
}

// Core is the Logger façade of spec.md §4.K. It owns the queue, the
// pipeline task, and the name registry for one of three data flows: Sync
// (format and write on the caller's goroutine), Async (HeapRingBuffer plus
// a dedicated Writer task), or MProc (HeapRingBuffer plus an MProc task
// feeding a SharedRingBuffer, or, on the owning side, a SharedReader task
// consuming it).
type Core struct {
	mode Mode
	cfg  Config
	pid  uint32

	registry  *name.Registry
	sharedReg *name.SharedProcessTable // MProc only

	queue *ring.Heap[record.Entry] // nil in Sync mode

	consumerSignal notify.Signal
	wfcSignal      notify.Signal

	writer *pipeline.Writer       // Async
	mproc  *pipeline.MProc        // MProc producer
	reader *pipeline.SharedReader // MProc owner

	shared *shmring.Shared // MProc only

	formatter pipeline.Formatter
	sinks     []sink.Sink
	errSink   sink.Sink

	Stats Stats
}

// NewOwner constructs a Core that owns its data flow: Sync and Async run
// entirely within this process; MProc additionally creates and owns the
// SharedRingBuffer segment that producer processes attach to.
func NewOwner(cfg Config) (*Core, error) {
	cfg = cfg.withDefaults()
	if !isPow2(cfg.Capacity) {
		return nil, ErrCapacity
	}
	sinks := cfg.Sinks
	if len(sinks) == 0 {
		sinks = []sink.Sink{sink.NewConsole(os.Stdout)}
	}
	errSink := cfg.ErrSink
	if errSink == nil {
		errSink = sink.Null{}
	}

	c := &Core{
		mode:      cfg.Mode,
		cfg:       cfg,
		pid:       uint32(os.Getpid()),
		registry:  name.NewRegistry(cfg.NameRegistryCapacity, name.NewArrayTable(cfg.NameRegistryCapacity)),
		formatter: cfg.Formatter,
		sinks:     sinks,
		errSink:   errSink,
	}

	switch cfg.Mode {
	case Sync:
		c.applyProcessName(cfg.ProcessName)
		return c, nil

	case Async:
		c.applyProcessName(cfg.ProcessName)
		c.consumerSignal = notify.NewInProcess()
		c.queue = ring.New[record.Entry](ring.Config{
			Capacity:          cfg.Capacity,
			Policy:            cfg.QueueFullPolicy,
			ShadowTailEnabled: cfg.ShadowTailEnabled,
			ConsumerSignal:    c.consumerSignal,
			WFCSignal:         c.wfcSignalOrNil(),
		})
		c.writer = pipeline.NewWriter(pipeline.WriterConfig{
			Queue:        c.queue,
			Formatter:    c.formatter,
			Names:        c.registry,
			Sinks:        c.sinks,
			ErrSink:      c.errSink,
			PollInterval: cfg.PollInterval,
			MaxWait:      cfg.PollTimeout,
		})
		go c.writer.Run()
		return c, nil

	case MProc:
		if len(cfg.SharedMemoryName) == 0 || cfg.SharedMemoryName[0] != '/' {
			return nil, ErrSharedMemoryName
		}
		shared, err := shmring.Create(cfg.SharedMemoryName, cfg.Capacity, record.EntrySize, cfg.QueueFullPolicy)
		if err != nil {
			return nil, err
		}
		c.shared = shared
		c.sharedReg, err = name.CreateSharedProcessTable(cfg.SharedMemoryName+".names", cfg.NameRegistryCapacity)
		if err != nil {
			shared.Close()
			return nil, err
		}
		// The owner's registry is backed directly by the shared process
		// table, so Formatter.Render resolves names an attached producer
		// registered in its own process (spec.md §8 Scenario 6).
		c.registry = name.NewRegistryWithProcessTable(c.sharedReg, name.NewArrayTable(cfg.NameRegistryCapacity))
		c.applyProcessName(cfg.ProcessName)
		c.reader = pipeline.NewSharedReader(pipeline.SharedReaderConfig{
			Shared:       shared,
			Formatter:    c.formatter,
			Names:        c.registry,
			Sinks:        c.sinks,
			ErrSink:      c.errSink,
			PollInterval: cfg.PollInterval,
		})
		go c.reader.Run()
		return c, nil

	default:
		return c, nil
	}
}

// NewProducer constructs a Core that attaches to an MProc owner's
// SharedRingBuffer rather than creating one, buffering locally through a
// HeapRingBuffer and an MProc pipeline task. Mode must be MProc.
func NewProducer(cfg Config) (*Core, error) {
	cfg = cfg.withDefaults()
	if !isPow2(cfg.Capacity) {
		return nil, ErrCapacity
	}
	if len(cfg.SharedMemoryName) == 0 || cfg.SharedMemoryName[0] != '/' {
		return nil, ErrSharedMemoryName
	}
	shared, err := shmring.Attach(cfg.SharedMemoryName, record.EntrySize)
	if err != nil {
		return nil, err
	}
	sharedReg, err := name.OpenSharedProcessTable(cfg.SharedMemoryName+".names", cfg.NameRegistryCapacity)
	if err != nil {
		shared.Close()
		return nil, err
	}

	pid := uint32(os.Getpid())
	c := &Core{
		mode:      MProc,
		cfg:       cfg,
		pid:       pid,
		sharedReg: sharedReg,
		shared:    shared,
	}
	// Backed by the shared process table so SetProcessName publishes into
	// the same segment the owner's Registry resolves against.
	c.registry = name.NewRegistryWithProcessTable(sharedReg, name.NewArrayTable(cfg.NameRegistryCapacity))
	c.applyProcessName(cfg.ProcessName)

	c.consumerSignal = notify.NewInProcess()
	c.queue = ring.New[record.Entry](ring.Config{
		Capacity:          cfg.Capacity,
		Policy:            cfg.QueueFullPolicy,
		ShadowTailEnabled: cfg.ShadowTailEnabled,
		ConsumerSignal:    c.consumerSignal,
		WFCSignal:         c.wfcSignalOrNil(),
	})
	c.mproc = pipeline.NewMProc(pipeline.MProcConfig{
		Queue:     c.queue,
		Shared:    shared,
		Policy:    cfg.QueueFullPolicy,
		ProcessID: pid,
		MaxWait:   cfg.PollTimeout,
	})
	go c.mproc.Run()
	return c, nil
}

func (c *Core) wfcSignalOrNil() notify.Signal {
	if !c.cfg.WFCEnabled {
		return nil
	}
	if c.wfcSignal == nil {
		c.wfcSignal = notify.NewInProcess()
	}
	return c.wfcSignal
}

// SetProcessName registers the calling process's display name, visible to
// every consumer sharing this Core's name registry (and, in MProc mode,
// to every other process attached to the same shared segment, since the
// registry's process half is the shared table itself there).
func (c *Core) SetProcessName(nm string) {
	c.registry.SetProcessName(c.pid, name.New(nm))
}

// applyProcessName calls SetProcessName if nm is non-empty; constructors
// call it once their final registry (possibly shared-table-backed) is in
// place, rather than writing into a registry that MProc later discards.
func (c *Core) applyProcessName(nm string) {
	if nm != "" {
		c.SetProcessName(nm)
	}
}

// SetThreadModule registers tid's module name in this Core's local
// registry (spec.md §4.G). Go has no portable analogue of an OS thread id;
// callers that want per-goroutine labeling should assign their own stable
// tid and pass it to Push/SetThreadModule consistently (see DESIGN.md).
func (c *Core) SetThreadModule(tid uint32, nm string) {
	c.registry.SetThreadModule(tid, name.New(nm))
}

// Registry exposes the name registry for callers that want to resolve a
// process or thread label themselves (e.g. a custom Formatter).
func (c *Core) Registry() *name.Registry { return c.registry }

// Push captures args per spec.md §4.A's capture_many and delivers the
// resulting entry according to the Core's Mode. tid is the entry's thread
// id; pass 0 if the caller does not track one.
func (c *Core) Push(tid uint32, level Level, args ...any) error {
	var e record.Entry
	e.Timestamp = time.Now().UnixNano()
	e.Level = level
	e.ThreadID = tid
	e.ProcessID = c.pid
	captureArgs(&e.Snapshot, args)
	return c.deliver(&e)
}

// PushWFC is Push, but blocks (bounded by cfg.PollTimeout) until the entry
// has been flushed to a sink, establishing the happens-before edge spec.md
// §5 describes. In Sync mode it is equivalent to Push, since delivery is
// already synchronous. On an MProc producer it waits only until the MProc
// pipeline has pushed the entry into the SharedRingBuffer. When
// Config.WFCEnabled is false it returns as soon as the entry is queued.
func (c *Core) PushWFC(tid uint32, level Level, args ...any) error {
	var e record.Entry
	e.Timestamp = time.Now().UnixNano()
	e.Level = level
	e.ThreadID = tid
	e.ProcessID = c.pid
	captureArgs(&e.Snapshot, args)

	if c.mode == Sync {
		return c.deliver(&e)
	}
	if c.queue == nil {
		return ErrOwnerCannotPush
	}
	ticket, err := c.queue.TryPush(&e)
	if err != nil {
		if err == ring.ErrFull {
			c.OverflowDrop()
			return nil
		}
		return err
	}
	if c.wfcSignalOrNil() == nil {
		return nil
	}
	if c.queue.AwaitFlush(ticket, c.cfg.PollTimeout) {
		return nil
	}
	return ring.ErrTimeout
}

// PushSnapshot delivers a Snapshot the caller has already filled with
// Snapshot's typed Capture* methods, bypassing the ...any dispatch Push
// and PushWFC perform through captureArgs. SPEC_FULL §6.A's rationale for
// typed capture methods ("keeps the hot path allocation-free: variadic
// ...any boxes every argument") only holds all the way to the caller if
// there is a Core entry point that never boxes; this is it.
func (c *Core) PushSnapshot(tid uint32, level Level, s *snapshot.Snapshot) error {
	var e record.Entry
	e.Timestamp = time.Now().UnixNano()
	e.Level = level
	e.ThreadID = tid
	e.ProcessID = c.pid
	e.Snapshot = *s
	return c.deliver(&e)
}

// Logf renders template via fmt.Sprintf and pushes the result as a single
// captured string, mirroring original_source's fast_logger.hpp inline
// capture-and-push convenience (SPEC_FULL §7). The %-verbs are rendered
// here, before the entry reaches the Formatter; a TextFormatter with a
// non-empty Template still places the result into that template's first
// "{}".
func (c *Core) Logf(tid uint32, level Level, template string, args ...any) error {
	return c.Push(tid, level, View(fmt.Sprintf(template, args...)))
}

func (c *Core) deliver(e *record.Entry) error {
	switch c.mode {
	case Sync:
		buf := make([]byte, 0, 512)
		buf = c.formatter.Render(e, c.registry, buf)
		for _, s := range c.sinks {
			if err := s.Write(e.Level, buf); err != nil {
				c.SinkError()
			}
		}
		return nil
	case Async, MProc:
		if c.queue == nil {
			return ErrOwnerCannotPush
		}
		if _, err := c.queue.TryPush(e); err != nil {
			if err == ring.ErrFull {
				c.OverflowDrop()
				return nil
			}
			return err
		}
		return nil
	default:
		return nil
	}
}

// OverflowDrop increments the drop counter (exported so the queued
// delivery path and PushWFC share one accounting point).
func (c *Core) OverflowDrop() { c.Stats.OverflowDrop.Add(1) }

// SinkError increments the sink-error counter for Sync-mode writes, which
// bypass the Writer/SharedReader pipeline's own WriterStats/SharedReaderStats.
func (c *Core) SinkError() { c.Stats.SinkErrors.Add(1) }

// Flush blocks until every entry pushed so far has reached a sink.
func (c *Core) Flush() {
	switch c.mode {
	case Sync:
		for _, s := range c.sinks {
			s.Flush()
		}
	case Async:
		c.writer.Flush()
	case MProc:
		if c.reader != nil {
			c.reader.Flush()
		}
		if c.mproc != nil {
			for !c.queue.IsEmpty() {
				time.Sleep(c.cfg.PollInterval)
			}
			for !c.shared.IsEmpty() {
				time.Sleep(c.cfg.PollInterval)
			}
		}
	}
}

// Shutdown stops delivery after draining everything already pushed
// (spec.md §8 invariant 8) and releases any shared-memory segment this
// Core owns.
func (c *Core) Shutdown() {
	switch c.mode {
	case Sync:
		for _, s := range c.sinks {
			s.Close()
		}
	case Async:
		c.writer.Shutdown()
	case MProc:
		if c.mproc != nil {
			c.mproc.Shutdown()
		}
		if c.reader != nil {
			c.reader.Shutdown()
		}
		if c.shared != nil {
			c.shared.Close()
		}
		if c.sharedReg != nil {
			c.sharedReg.Close()
		}
	}
}
