// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shmring implements SharedRingBuffer (spec.md §3/§4.F/§6): the
// same SlotStateMachine protocol as package ring, realized inside a named
// /dev/shm segment so it can be shared across process boundaries. The
// mmap mechanics are grounded on the teacher pack's AlephTX shared-memory
// ring buffer; the slot protocol mirrors ring.Heap exactly, operating
// directly on the mapped bytes with the standard library's sync/atomic
// instead of the atomix wrapper types ring uses, since atomix's typed
// atomics assume they own a Go-resident value's memory layout and this
// package's atomics must address raw bytes inside an mmap'd region shared
// with another process (see DESIGN.md).
package shmring

import (
	"encoding/binary"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"unsafe"

	"code.hybscloud.com/plog/internal/lfqcore"
	"code.hybscloud.com/plog/ring"
)

// Magic identifies a valid SharedRingBuffer segment ("ONE_PLOG", spec.md §6).
const Magic uint64 = 0x4F4E455F504C4F47

// Version is bumped on any change to the on-wire layout.
const Version uint32 = 1

const cacheLine = 64

// Header field byte offsets. Read-mostly fields share the first cache
// line; head, tail, and shadow_tail each get a dedicated cache line to
// avoid false sharing across processes, per spec.md §6.
const (
	offMagic       = 0
	offVersion     = 8
	offCapacity    = 12
	offPolicy      = 16
	offElementSize = 20
	offNotifyInfo  = 24
	offHead        = cacheLine * 1
	offTail        = cacheLine * 2
	offShadowTail  = cacheLine * 3
	headerLen      = cacheLine * 4
)

// slotStatusSize is the per-slot {state:u32, seq:u64} record, padded to a
// cache line.
const slotStatusSize = cacheLine

var (
	ErrInvalidFormat    = errors.New("shmring: invalid magic")
	ErrVersionMismatch  = errors.New("shmring: version mismatch")
	ErrCapacityMismatch = errors.New("shmring: element size mismatch")
	ErrNotFound         = errors.New("shmring: segment not found")
	// ErrEmpty is returned by TryPop when the ring holds no entries. It
	// aliases lfqcore.ErrWouldBlock, same as ring.ErrEmpty, so callers can
	// use lfqcore.IsWouldBlock to tell "nothing to read yet" apart from a
	// genuine failure regardless of which ring backs the pop.
	ErrEmpty = lfqcore.ErrWouldBlock
	ErrFull  = errors.New("shmring: full, entry dropped")
)

// Shared is a SharedRingBuffer handle. One process (the owner) creates it;
// others attach. Owner.Close unmaps and unlinks the segment; an attached
// handle's Close only unmaps.
type Shared struct {
	owner       bool
	file        *os.File
	data        []byte
	capacity    uint64
	mask        uint64
	elementSize int
	policy      ring.FullPolicy
}

func segmentPath(name string) (string, error) {
	if len(name) == 0 || name[0] != '/' {
		return "", errors.New("shmring: shared_memory_name must begin with \"/\"")
	}
	return "/dev/shm" + name, nil
}

// Create creates and owns a new SharedRingBuffer segment named name
// (which must begin with "/"), sized for capacity (rounded up to a power
// of two) elements of elementSize bytes each.
func Create(name string, capacity, elementSize int, policy ring.FullPolicy) (*Shared, error) {
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}
	n := uint64(lfqcore.RoundToPow2(capacity))
	total := alignUp(headerLen+int(n)*slotStatusSize+int(n)*elementSize, cacheLine)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(total)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, total, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &Shared{owner: true, file: f, data: data, capacity: n, mask: n - 1, elementSize: elementSize, policy: policy}
	binary.LittleEndian.PutUint64(data[offMagic:], Magic)
	binary.LittleEndian.PutUint32(data[offVersion:], Version)
	binary.LittleEndian.PutUint32(data[offCapacity:], uint32(n))
	binary.LittleEndian.PutUint32(data[offPolicy:], uint32(policy))
	binary.LittleEndian.PutUint32(data[offElementSize:], uint32(elementSize))
	binary.LittleEndian.PutUint64(data[offNotifyInfo:], 0)
	for i := uint64(0); i < n; i++ {
		s.slotSeqPtr(i).set(i)
		s.slotStatePtr(i).set(uint32(ring.Empty))
	}
	return s, nil
}

// Attach opens an existing SharedRingBuffer segment created by another
// process, validating the magic, version, and element size.
func Attach(name string, elementSize int) (*Shared, error) {
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(info.Size()), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	if binary.LittleEndian.Uint64(data[offMagic:]) != Magic {
		syscall.Munmap(data)
		f.Close()
		return nil, ErrInvalidFormat
	}
	if binary.LittleEndian.Uint32(data[offVersion:]) != Version {
		syscall.Munmap(data)
		f.Close()
		return nil, ErrVersionMismatch
	}
	if int(binary.LittleEndian.Uint32(data[offElementSize:])) != elementSize {
		syscall.Munmap(data)
		f.Close()
		return nil, ErrCapacityMismatch
	}
	n := uint64(binary.LittleEndian.Uint32(data[offCapacity:]))
	policy := ring.FullPolicy(binary.LittleEndian.Uint32(data[offPolicy:]))
	return &Shared{owner: false, file: f, data: data, capacity: n, mask: n - 1, elementSize: elementSize, policy: policy}, nil
}

// Close unmaps the segment. The owner additionally unlinks it; an
// attacher leaves it intact for other attachers.
func (s *Shared) Close() error {
	err := syscall.Munmap(s.data)
	s.file.Close()
	if s.owner {
		if name := s.file.Name(); name != "" {
			os.Remove(name)
		}
	}
	return err
}

// Cap returns the segment's slot capacity.
func (s *Shared) Cap() int { return int(s.capacity) }

// Len returns an approximate occupancy, accurate only when quiescent.
func (s *Shared) Len() int {
	head := s.headPtr().load()
	tail := s.tailPtr().load()
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// IsEmpty reports whether the segment currently has no entries.
func (s *Shared) IsEmpty() bool { return s.Len() == 0 }

type u32View struct{ p *uint32 }

func (v u32View) load() uint32          { return atomic.LoadUint32(v.p) }
func (v u32View) store(val uint32)      { atomic.StoreUint32(v.p, val) }
func (v u32View) set(val uint32)        { *v.p = val }
func (v u32View) cas(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(v.p, old, new)
}

type u64View struct{ p *uint64 }

func (v u64View) load() uint64     { return atomic.LoadUint64(v.p) }
func (v u64View) store(val uint64) { atomic.StoreUint64(v.p, val) }
func (v u64View) set(val uint64)   { *v.p = val }
func (v u64View) cas(old, new uint64) bool {
	return atomic.CompareAndSwapUint64(v.p, old, new)
}

func (s *Shared) headPtr() u64View {
	return u64View{(*uint64)(unsafe.Pointer(&s.data[offHead]))}
}
func (s *Shared) tailPtr() u64View {
	return u64View{(*uint64)(unsafe.Pointer(&s.data[offTail]))}
}
func (s *Shared) shadowTailPtr() u64View {
	return u64View{(*uint64)(unsafe.Pointer(&s.data[offShadowTail]))}
}

func (s *Shared) slotStatusOff(i uint64) int {
	return headerLen + int(i)*slotStatusSize
}
func (s *Shared) slotStatePtr(i uint64) u32View {
	return u32View{(*uint32)(unsafe.Pointer(&s.data[s.slotStatusOff(i)]))}
}
func (s *Shared) slotSeqPtr(i uint64) u64View {
	return u64View{(*uint64)(unsafe.Pointer(&s.data[s.slotStatusOff(i)+4]))}
}
func (s *Shared) slotDataOff(i uint64) int {
	return headerLen + int(s.capacity)*slotStatusSize + int(i)*s.elementSize
}

// TryPush copies payload (which must be exactly elementSize bytes) into
// the next free slot. When the ring is full, DropOldest evicts the oldest
// entry and retries; DropNewest and Block return ErrFull. Returns the
// claimed producer cursor position (the slot index is that value masked by
// Cap()-1) or an error.
func (s *Shared) TryPush(payload []byte) (uint64, error) {
	for {
		head := s.headPtr().load()
		idx := head & s.mask
		seq := s.slotSeqPtr(idx).load()
		diff := int64(seq) - int64(head)
		switch {
		case diff == 0:
			if s.headPtr().cas(head, head+1) {
				s.slotStatePtr(idx).store(uint32(ring.Writing))
				copy(s.data[s.slotDataOff(idx):s.slotDataOff(idx)+s.elementSize], payload)
				s.slotSeqPtr(idx).store(head + 1)
				s.slotStatePtr(idx).store(uint32(ring.Ready))
				return head, nil
			}
		case diff < 0:
			return s.handleFull(payload)
		}
	}
}

func (s *Shared) handleFull(payload []byte) (uint64, error) {
	switch s.policy {
	case ring.DropOldest:
		if _, err := s.TryPop(nil); err != nil {
			return 0, ErrFull
		}
		return s.TryPush(payload)
	default:
		return 0, ErrFull
	}
}

// TryPop removes the oldest entry into dst (which must be at least
// elementSize bytes; pass nil to discard the payload), returning the
// popped consumer cursor position.
func (s *Shared) TryPop(dst []byte) (uint64, error) {
	for {
		tail := s.tailPtr().load()
		idx := tail & s.mask
		seq := s.slotSeqPtr(idx).load()
		diff := int64(seq) - int64(tail+1)
		switch {
		case diff == 0:
			if s.tailPtr().cas(tail, tail+1) {
				s.slotStatePtr(idx).store(uint32(ring.Reading))
				if dst != nil {
					off := s.slotDataOff(idx)
					copy(dst, s.data[off:off+s.elementSize])
				}
				s.slotSeqPtr(idx).store(tail + s.capacity)
				s.slotStatePtr(idx).store(uint32(ring.Empty))
				s.shadowTailPtr().store(tail + 1)
				return tail, nil
			}
		case diff < 0:
			return 0, ErrEmpty
		}
	}
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
