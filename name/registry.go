// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package name

import (
	"strconv"

	"code.hybscloud.com/atomix"
)

// DefaultThreadModule is returned by ThreadModule on a lookup miss
// (spec.md §4.G).
const DefaultThreadModule = "main"

// ProcessTable is the process-name half of a Registry: register and look
// up only, none of Table's Count/Clear/IsRegistered bookkeeping. Both the
// in-process ArrayTable and the cross-process SharedProcessTable satisfy
// it, so a Registry can be backed by either (spec.md §4.G, §8 Scenario 6:
// an MProc owner's Registry must resolve names an attached producer
// registered in a different process).
type ProcessTable interface {
	Register(id uint32, nm FixedName) bool
	Get(id uint32) (FixedName, bool)
}

// Registry is the process/thread name table of spec.md §4.G: a bounded
// (process id) → FixedName map, a LookupTable for threads, and a
// generation counter consumers may poll to invalidate caches. The Registry
// itself is an in-process value; its process half lives in shared memory
// only when it is built with NewRegistryWithProcessTable over a
// SharedProcessTable. Readers never block.
type Registry struct {
	processes  ProcessTable
	threads    Table
	generation atomix.Uint64
}

// NewRegistry creates a Registry with room for processCapacity distinct
// process ids, backed by the given thread Table (DirectTable or
// ArrayTable, as the caller chooses).
func NewRegistry(processCapacity int, threads Table) *Registry {
	return &Registry{
		processes: NewArrayTable(processCapacity),
		threads:   threads,
	}
}

// NewRegistryWithProcessTable creates a Registry whose process-name half
// is processes rather than a fresh ArrayTable. An MProc owner passes its
// SharedProcessTable here, so Formatter.Render's *Registry argument
// resolves names registered by any process attached to the same shared
// segment, not just this process's own SetProcessName calls.
func NewRegistryWithProcessTable(processes ProcessTable, threads Table) *Registry {
	return &Registry{
		processes: processes,
		threads:   threads,
	}
}

// SetProcessName registers pid's display name.
func (r *Registry) SetProcessName(pid uint32, nm FixedName) bool {
	ok := r.processes.Register(pid, nm)
	r.generation.Add(1)
	return ok
}

// SetThreadModule registers tid's module name.
func (r *Registry) SetThreadModule(tid uint32, nm FixedName) bool {
	ok := r.threads.Register(tid, nm)
	r.generation.Add(1)
	return ok
}

// ProcessName returns pid's display name, or its decimal string form on a
// lookup miss.
func (r *Registry) ProcessName(pid uint32) string {
	if nm, ok := r.processes.Get(pid); ok {
		return nm.View()
	}
	return strconv.FormatUint(uint64(pid), 10)
}

// ThreadModule returns tid's module name, or DefaultThreadModule on a
// lookup miss.
func (r *Registry) ThreadModule(tid uint32) string {
	if nm, ok := r.threads.Get(tid); ok {
		return nm.View()
	}
	return DefaultThreadModule
}

// Generation returns the current generation counter. Consumers may cache
// ProcessName/ThreadModule results keyed to a Generation snapshot and
// invalidate the cache whenever it advances.
func (r *Registry) Generation() uint64 {
	return r.generation.Load()
}
