// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/plog/internal/lfqcore"
)

// Signal is the minimal wakeup primitive a Heap uses to notify a waiting
// consumer and to bound PushWFC/WaitForData. package notify's Signal
// implementations satisfy this structurally; Heap never imports notify so
// ring has no dependency on the platform-specific wakeup mechanism.
type Signal interface {
	Signal()
	Wait(maxWait time.Duration) bool
}

type heapSlot[T any] struct {
	seq   atomix.Uint64
	state atomix.Uint32
	data  T
	_     lfqcore.Pad
}

// Heap is a capacity-is-power-of-two, lock-free MPMC ring buffer over a
// heap allocation (spec.md §3/§4.E), implementing the SlotStateMachine
// protocol of §4.D: a producer CASes its cursor from Empty to Writing,
// stores the payload, then publishes Ready; a consumer CASes Ready to
// Reading, loads the payload, then republishes Empty for the next lap.
//
// Configuration (capacity, full policy, shadow tail, WFC) is fixed at
// construction. Lifetime is tied to the owning logger: Shutdown rejects
// further pushes, while entries already queued stay available to TryPop so
// the consumer can drain them.
type Heap[T any] struct {
	_ lfqcore.Pad
	// head is the producer cursor: the next slot index a producer will
	// attempt to claim.
	head atomix.Uint64
	_    lfqcore.Pad
	// tail is the consumer cursor: the next slot index a consumer will
	// attempt to claim.
	tail atomix.Uint64
	_    lfqcore.Pad
	// shadowTail is an approximate, cheaply-read copy of tail that a
	// consumer republishes after each pop when shadowTailEnabled is set,
	// letting producers cheaply pre-check fullness without touching the
	// contended slot array (grounded on the teacher's spsc.go cachedHead).
	shadowTail atomix.Uint64
	_          lfqcore.Pad
	// flushed is the WFC watermark: all entries whose ticket (cursor
	// position) is < flushed have been handed on by the consumer.
	flushed atomix.Uint64
	_       lfqcore.Pad

	slots []heapSlot[T]
	mask  uint64

	policy             FullPolicy
	shadowTailEnabled  bool
	consumerSignal     Signal
	wfcSignal          Signal
	shuttingDown       atomix.Bool
}

// Config configures a Heap at construction.
type Config struct {
	// Capacity is rounded up to the next power of two; minimum 2.
	Capacity int
	// Policy governs TryPush behaviour when the ring is full.
	Policy FullPolicy
	// ShadowTailEnabled turns on the consumer-published cheap-bound fast
	// path.
	ShadowTailEnabled bool
	// ConsumerSignal, if non-nil, is signaled by NotifyConsumer and waited
	// on by WaitForData.
	ConsumerSignal Signal
	// WFCSignal, if non-nil, is signaled whenever MarkFlushed advances the
	// flush watermark, and waited on by PushWFC/AwaitFlush.
	WFCSignal Signal
}

// New creates a Heap per cfg.
func New[T any](cfg Config) *Heap[T] {
	n := lfqcore.RoundToPow2(cfg.Capacity)
	h := &Heap[T]{
		slots:             make([]heapSlot[T], n),
		mask:              uint64(n - 1),
		policy:            cfg.Policy,
		shadowTailEnabled: cfg.ShadowTailEnabled,
		consumerSignal:    cfg.ConsumerSignal,
		wfcSignal:         cfg.WFCSignal,
	}
	for i := range h.slots {
		h.slots[i].seq.StoreRelaxed(uint64(i))
	}
	return h
}

// Cap returns the ring's capacity.
func (h *Heap[T]) Cap() int { return int(h.mask) + 1 }

// Len returns an approximate occupancy: accurate only when quiescent, since
// lock-free producers/consumers may be mid-transition.
func (h *Heap[T]) Len() int {
	head := h.head.LoadAcquire()
	tail := h.tail.LoadAcquire()
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// IsEmpty reports whether the ring currently has no entries.
func (h *Heap[T]) IsEmpty() bool { return h.Len() == 0 }

// IsFull reports whether the ring currently has no free slots.
func (h *Heap[T]) IsFull() bool { return h.Len() >= h.Cap() }

// TryPush attempts to enqueue elem without blocking, applying the
// configured FullPolicy if the ring is observed full. It returns the
// producer cursor position the entry was written at (a WFC ticket for
// AwaitFlush; the slot index is that value masked by Cap()-1), or an error.
func (h *Heap[T]) TryPush(elem *T) (uint64, error) {
	if h.shuttingDown.Load() {
		return 0, ErrShuttingDown
	}
	if h.shadowTailEnabled {
		head := h.head.LoadRelaxed()
		st := h.shadowTail.LoadRelaxed()
		if head-st <= h.mask {
			return h.tryPushOnce(elem)
		}
	}
	return h.tryPushOnce(elem)
}

func (h *Heap[T]) tryPushOnce(elem *T) (uint64, error) {
	for {
		head := h.head.LoadAcquire()
		slot := &h.slots[head&h.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head)
		switch {
		case diff == 0:
			if h.head.CompareAndSwapAcqRel(head, head+1) {
				slot.state.StoreRelease(uint32(Writing))
				slot.data = *elem
				slot.seq.StoreRelease(head + 1)
				slot.state.StoreRelease(uint32(Ready))
				h.signalConsumer()
				return head, nil
			}
		case diff < 0:
			return h.handleFull(elem)
		default:
			// Another producer has claimed this slot first; retry.
		}
		spin.Wait{}.Once()
	}
}

// handleFull applies the configured FullPolicy once the ring is observed
// full.
func (h *Heap[T]) handleFull(elem *T) (uint64, error) {
	switch h.policy {
	case DropOldest:
		if _, err := h.TryPop(); err != nil {
			return 0, ErrFull
		}
		return h.tryPushOnce(elem)
	case Block:
		backoff := iox.Backoff{}
		for {
			if h.shuttingDown.Load() {
				return 0, ErrShuttingDown
			}
			head := h.head.LoadAcquire()
			slot := &h.slots[head&h.mask]
			seq := slot.seq.LoadAcquire()
			if int64(seq)-int64(head) == 0 {
				backoff.Reset()
				return h.tryPushOnce(elem)
			}
			backoff.Wait()
		}
	default: // DropNewest
		return 0, ErrFull
	}
}

// TryPop attempts to dequeue the oldest entry without blocking.
func (h *Heap[T]) TryPop() (T, error) {
	val, _, err := h.TryPopTicket()
	return val, err
}

// TryPopTicket is TryPop but additionally returns the popped entry's WFC
// ticket (the value TryPush returned when the entry was pushed), so a
// consumer can call MarkFlushed once it has finished handing the entry to
// a sink.
func (h *Heap[T]) TryPopTicket() (T, uint64, error) {
	var zero T
	for {
		tail := h.tail.LoadAcquire()
		slot := &h.slots[tail&h.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail+1)
		switch {
		case diff == 0:
			if h.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.state.StoreRelease(uint32(Reading))
				val := slot.data
				slot.data = zero
				slot.seq.StoreRelease(tail + uint64(h.Cap()))
				slot.state.StoreRelease(uint32(Empty))
				if h.shadowTailEnabled {
					h.shadowTail.StoreRelaxed(tail + 1)
				}
				return val, tail, nil
			}
		case diff < 0:
			return zero, 0, ErrEmpty
		default:
			// Another consumer has claimed this slot first; retry.
		}
		spin.Wait{}.Once()
	}
}

// NotifyConsumer wakes a consumer blocked in WaitForData.
func (h *Heap[T]) NotifyConsumer() { h.signalConsumer() }

func (h *Heap[T]) signalConsumer() {
	if h.consumerSignal != nil {
		h.consumerSignal.Signal()
	}
}

// WaitForData blocks (bounded by maxWait) until data may be available, or
// returns immediately if no consumer Signal was configured. Callers must
// re-check IsEmpty()/TryPop after waking (spec.md §5): the wakeup is a
// hint, not a guarantee.
func (h *Heap[T]) WaitForData(maxWait time.Duration) bool {
	if h.consumerSignal == nil {
		return true
	}
	return h.consumerSignal.Wait(maxWait)
}

// PushWFC enqueues elem and blocks (bounded by maxWait) until the Writer
// pipeline has flushed it to a sink, establishing the happens-before edge
// spec.md §5 describes.
func (h *Heap[T]) PushWFC(elem *T, maxWait time.Duration) error {
	ticket, err := h.TryPush(elem)
	if err != nil {
		return err
	}
	if h.AwaitFlush(ticket, maxWait) {
		return nil
	}
	return ErrTimeout
}

// MarkFlushed advances the flush watermark past ticket n. Called by the
// Writer pipeline once it has handed the entry with ticket n to a sink (and
// by the MProc pipeline once it has pushed it into the SharedRingBuffer).
func (h *Heap[T]) MarkFlushed(n uint64) {
	for {
		cur := h.flushed.LoadAcquire()
		if cur > n {
			return
		}
		if h.flushed.CompareAndSwapAcqRel(cur, n+1) {
			if h.wfcSignal != nil {
				h.wfcSignal.Signal()
			}
			return
		}
	}
}

// AwaitFlush blocks (bounded by maxWait) until the entry identified by
// ticket has been flushed.
func (h *Heap[T]) AwaitFlush(ticket uint64, maxWait time.Duration) bool {
	deadline := time.Now().Add(maxWait)
	backoff := iox.Backoff{}
	for h.flushed.LoadAcquire() <= ticket {
		if h.wfcSignal != nil {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return false
			}
			if !h.wfcSignal.Wait(remaining) {
				continue
			}
			continue
		}
		if time.Now().After(deadline) {
			return false
		}
		backoff.Wait()
	}
	return true
}

// Shutdown marks the ring as shutting down: further TryPush calls fail
// with ErrShuttingDown. Existing entries remain available to TryPop so the
// Writer pipeline can drain them (spec.md §8 invariant 8).
func (h *Heap[T]) Shutdown() {
	h.shuttingDown.Store(true)
	h.signalConsumer()
}
