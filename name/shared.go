// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package name

import (
	"os"
	"sync/atomic"
	"syscall"
	"unsafe"
)

const sharedEntrySize = 64 // {valid:u32, pid:u32, name:[MaxLen+1]byte} padded to a cache line

// SharedProcessTable is the cross-process realization of the NameRegistry
// process-name half (spec.md §4.G, §8 Scenario 6): a fixed-capacity
// (process id) -> FixedName table living in a /dev/shm segment, so an
// attaching MProc producer can register its display name and the owning
// process's consumer can read it back. The claim algorithm is ArrayTable's
// CAS-increment-then-fill, operated directly on mmap'd bytes with
// sync/atomic for the same reason shmring uses it instead of atomix (see
// DESIGN.md).
type SharedProcessTable struct {
	owner bool
	file  *os.File
	data  []byte
	cap   int
}

// CreateSharedProcessTable creates and owns a new table segment.
func CreateSharedProcessTable(path string, capacity int) (*SharedProcessTable, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	size := 8 + capacity*sharedEntrySize
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &SharedProcessTable{owner: true, file: f, data: data, cap: capacity}, nil
}

// OpenSharedProcessTable attaches to a table created by
// CreateSharedProcessTable in another process.
func OpenSharedProcessTable(path string, capacity int) (*SharedProcessTable, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	size := 8 + capacity*sharedEntrySize
	data, err := syscall.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &SharedProcessTable{owner: false, file: f, data: data, cap: capacity}, nil
}

// Close unmaps the table. The owner also unlinks the backing file.
func (t *SharedProcessTable) Close() error {
	err := syscall.Munmap(t.data)
	path := t.file.Name()
	t.file.Close()
	if t.owner {
		os.Remove(path)
	}
	return err
}

func (t *SharedProcessTable) countPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&t.data[0]))
}

func (t *SharedProcessTable) entryOff(i int) int { return 8 + i*sharedEntrySize }

func (t *SharedProcessTable) validPtr(i int) *uint32 {
	return (*uint32)(unsafe.Pointer(&t.data[t.entryOff(i)]))
}
func (t *SharedProcessTable) pidPtr(i int) *uint32 {
	return (*uint32)(unsafe.Pointer(&t.data[t.entryOff(i)+4]))
}
func (t *SharedProcessTable) nameBytes(i int) []byte {
	off := t.entryOff(i) + 8
	return t.data[off : off+MaxLen+1]
}

// Register publishes pid's display name, visible to every process attached
// to the table.
func (t *SharedProcessTable) Register(pid uint32, nm FixedName) bool {
	n := int(atomic.LoadUint32(t.countPtr()))
	for i := 0; i < n && i < t.cap; i++ {
		if atomic.LoadUint32(t.validPtr(i)) != 0 && atomic.LoadUint32(t.pidPtr(i)) == pid {
			nb := t.nameBytes(i)
			for j := range nb {
				nb[j] = 0
			}
			copy(nb, []byte(nm.View()))
			return true
		}
	}
	for {
		c := atomic.LoadUint32(t.countPtr())
		if int(c) >= t.cap {
			return false
		}
		if atomic.CompareAndSwapUint32(t.countPtr(), c, c+1) {
			idx := int(c)
			atomic.StoreUint32(t.pidPtr(idx), pid)
			view := nm.View()
			nb := t.nameBytes(idx)
			for i := range nb {
				nb[i] = 0
			}
			copy(nb, []byte(view))
			atomic.StoreUint32(t.validPtr(idx), 1)
			return true
		}
	}
}

// Get returns pid's display name, or false on a miss. The return type
// matches ProcessTable so a Registry can be backed directly by a
// SharedProcessTable (see name.NewRegistryWithProcessTable).
func (t *SharedProcessTable) Get(pid uint32) (FixedName, bool) {
	n := int(atomic.LoadUint32(t.countPtr()))
	for i := 0; i < n && i < t.cap; i++ {
		if atomic.LoadUint32(t.validPtr(i)) != 0 && atomic.LoadUint32(t.pidPtr(i)) == pid {
			nb := t.nameBytes(i)
			end := 0
			for end < len(nb) && nb[end] != 0 {
				end++
			}
			return New(string(nb[:end])), true
		}
	}
	return FixedName{}, false
}
