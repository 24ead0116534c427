// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"

	"code.hybscloud.com/plog/record"
	"code.hybscloud.com/plog/ring"
	"code.hybscloud.com/plog/shmring"
)

// MProcStats are the atomic counters the MProc pipeline reports through
// (spec.md §7: steady-state errors are absorbed into counters).
type MProcStats struct {
	Dropped atomix.Uint64
}

// MProc is the producer-side pipeline of spec.md §4.I: it drains a local
// HeapRingBuffer, converts each entry's borrowed string views to inline
// copies and fills in the producer's process id, then pushes the wire
// bytes into a SharedRingBuffer. Buffering this way means producers only
// ever contend on the cheap in-process ring; the conversion and
// shared-memory write are amortized on this dedicated task.
type MProc struct {
	queue     *ring.Heap[record.Entry]
	shared    *shmring.Shared
	policy    ring.FullPolicy
	processID uint32
	maxWait   time.Duration
	running   atomix.Bool
	Stats     MProcStats
}

// MProcConfig configures an MProc pipeline.
type MProcConfig struct {
	Queue     *ring.Heap[record.Entry]
	Shared    *shmring.Shared
	Policy    ring.FullPolicy
	ProcessID uint32
	MaxWait   time.Duration
}

// NewMProc creates an MProc pipeline.
func NewMProc(cfg MProcConfig) *MProc {
	m := &MProc{
		queue:     cfg.Queue,
		shared:    cfg.Shared,
		policy:    cfg.Policy,
		processID: cfg.ProcessID,
		maxWait:   cfg.MaxWait,
	}
	m.running.Store(true)
	return m
}

// Run drains the local queue into the shared ring until Shutdown is
// called and the queue is empty.
func (m *MProc) Run() {
	var wire [record.EntrySize]byte
	for m.running.Load() {
		if !m.drainOnce(&wire) {
			m.queue.WaitForData(m.maxWait)
		}
	}
	for m.drainOnce(&wire) {
	}
}

func (m *MProc) drainOnce(wire *[record.EntrySize]byte) bool {
	processed := false
	for {
		e, ticket, err := m.queue.TryPopTicket()
		if err != nil {
			return processed
		}
		processed = true
		m.process(&e, ticket, wire)
	}
}

func (m *MProc) process(e *record.Entry, ticket uint64, wire *[record.EntrySize]byte) {
	defer m.queue.MarkFlushed(ticket)

	e.Snapshot.ConvertBorrowedToInline()
	e.ProcessID = m.processID
	e.SerializeTo(wire[:])

	if err := m.push(wire[:]); err != nil {
		m.Stats.Dropped.Add(1)
	}
}

func (m *MProc) push(payload []byte) error {
	_, err := m.shared.TryPush(payload)
	if err == nil || err != shmring.ErrFull {
		return err
	}
	if m.policy != ring.Block {
		return err
	}
	backoff := iox.Backoff{}
	deadline := time.Now().Add(m.maxWait)
	for {
		_, err := m.shared.TryPush(payload)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		backoff.Wait()
	}
}

// Shutdown stops Run after the queue has been fully drained.
func (m *MProc) Shutdown() {
	m.running.Store(false)
	m.queue.Shutdown()
}
