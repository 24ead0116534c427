// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package name

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/plog/internal/lfqcore"
)

// Table maps a 32-bit thread id to a FixedName. Both concrete variants
// (DirectTable, ArrayTable) satisfy it; spec.md §4.C leaves the choice
// between them to the platform; here the caller picks one at run time by
// constructing it with NewDirectTable or NewArrayTable (see DESIGN.md).
type Table interface {
	Register(id uint32, nm FixedName) bool
	Get(id uint32) (FixedName, bool)
	IsRegistered(id uint32) bool
	Count() int
	Clear()
}

type directEntry struct {
	valid atomix.Bool
	name  FixedName
	_     lfqcore.Pad
}

// DirectTable is the array-indexed LookupTable variant (spec.md §4.C
// DirectMapping): O(1) lookup, one slot per possible thread id. Suited to
// platforms where thread ids are small and bounded (Linux's pid_max).
type DirectTable struct {
	entries []directEntry
	count   atomix.Int64
}

// NewDirectTable creates a DirectTable covering thread ids [0, limit).
func NewDirectTable(limit int) *DirectTable {
	return &DirectTable{entries: make([]directEntry, limit)}
}

// Register writes nm for id. Out-of-range ids are rejected.
func (t *DirectTable) Register(id uint32, nm FixedName) bool {
	if int(id) >= len(t.entries) {
		return false
	}
	e := &t.entries[id]
	wasValid := e.valid.LoadAcquire()
	e.name = nm
	e.valid.StoreRelease(true)
	if !wasValid {
		t.count.Add(1)
	}
	return true
}

// Get returns the name registered for id, or the zero FixedName and false.
func (t *DirectTable) Get(id uint32) (FixedName, bool) {
	if int(id) >= len(t.entries) {
		return FixedName{}, false
	}
	e := &t.entries[id]
	if !e.valid.LoadAcquire() {
		return FixedName{}, false
	}
	return e.name, true
}

// IsRegistered reports whether id currently has a name.
func (t *DirectTable) IsRegistered(id uint32) bool {
	if int(id) >= len(t.entries) {
		return false
	}
	return t.entries[id].valid.LoadAcquire()
}

// Count returns the number of registered ids.
func (t *DirectTable) Count() int { return int(t.count.Load()) }

// Clear invalidates every entry. The logical count is zeroed first so
// concurrent readers never observe a nonzero Count alongside an entry that
// has already been hidden.
func (t *DirectTable) Clear() {
	t.count.Store(0)
	for i := range t.entries {
		t.entries[i].valid.Store(false)
	}
}

type arrayEntry struct {
	valid atomix.Bool
	key   atomix.Int64
	name  FixedName
	_     lfqcore.Pad
}

// ArrayTable is the linear-probe LookupTable variant (spec.md §4.C
// ArrayMapping): O(n) lookup, fixed memory regardless of the id space.
// Suited to platforms where thread ids are large and sparse (macOS,
// Windows).
type ArrayTable struct {
	entries []arrayEntry
	count   atomix.Int64
}

// NewArrayTable creates an ArrayTable with room for capacity entries.
func NewArrayTable(capacity int) *ArrayTable {
	return &ArrayTable{entries: make([]arrayEntry, capacity)}
}

// Register scans for an existing id and updates it in place; otherwise it
// claims a new slot by CAS-incrementing count, with a bounded retry.
// Returns false once the table is full.
func (t *ArrayTable) Register(id uint32, nm FixedName) bool {
	key := int64(id)
	n := int(t.count.LoadAcquire())
	for i := 0; i < n && i < len(t.entries); i++ {
		e := &t.entries[i]
		if e.valid.LoadAcquire() && e.key.Load() == key {
			e.name = nm
			return true
		}
	}
	for attempt := 0; attempt < len(t.entries); attempt++ {
		c := t.count.LoadAcquire()
		if int(c) >= len(t.entries) {
			return false
		}
		if t.count.CompareAndSwapAcqRel(c, c+1) {
			e := &t.entries[c]
			e.key.Store(key)
			e.name = nm
			e.valid.StoreRelease(true)
			return true
		}
	}
	return false
}

// Get returns the name registered for id, or the zero FixedName and false.
func (t *ArrayTable) Get(id uint32) (FixedName, bool) {
	key := int64(id)
	n := int(t.count.LoadAcquire())
	for i := 0; i < n && i < len(t.entries); i++ {
		e := &t.entries[i]
		if e.valid.LoadAcquire() && e.key.Load() == key {
			return e.name, true
		}
	}
	return FixedName{}, false
}

// IsRegistered reports whether id currently has a name.
func (t *ArrayTable) IsRegistered(id uint32) bool {
	_, ok := t.Get(id)
	return ok
}

// Count returns the number of registered ids.
func (t *ArrayTable) Count() int { return int(t.count.Load()) }

// Clear invalidates every entry, hiding the logical size first.
func (t *ArrayTable) Clear() {
	t.count.Store(0)
	for i := range t.entries {
		t.entries[i].valid.Store(false)
	}
}
