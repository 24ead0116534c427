// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline implements the Writer pipeline (spec.md §4.H) and the
// MProc pipeline (spec.md §4.I): the consumer-side and producer-side tasks
// that drain a HeapRingBuffer into sinks or into a SharedRingBuffer.
package pipeline

import (
	"strconv"

	"code.hybscloud.com/plog/name"
	"code.hybscloud.com/plog/record"
)

// Formatter renders an Entry into bytes for a Sink (spec.md §9: "the
// writer pipeline is parameterized over the (format, sink) capability
// set"). names lets a Formatter resolve e.ProcessID/e.ThreadID against
// the NameRegistry instead of printing raw numeric ids (spec.md §4.G,
// §8 Scenario 6); it is nil wherever no registry was configured, and
// implementations must handle that case.
type Formatter interface {
	// Render appends the rendered entry to dst and returns the extended
	// slice. Implementations must not retain e or names beyond the call.
	Render(e *record.Entry, names *name.Registry, dst []byte) []byte
}

// TextFormatter is the default Formatter: "LEVEL ts=<ns>
// tid=<module-or-id> pid=<name-or-id> <rendered snapshot>\n". With a
// registry, tid shows the thread's module name ("main" when unregistered);
// without one, the numeric id.
type TextFormatter struct {
	// Template, if non-empty, is passed to Snapshot.FormatWith instead of
	// treating the first captured argument as the template (FormatAll).
	Template string
}

// Render implements Formatter.
func (f TextFormatter) Render(e *record.Entry, names *name.Registry, dst []byte) []byte {
	dst = append(dst, e.Level.String()...)
	dst = append(dst, " ts="...)
	dst = strconv.AppendInt(dst, e.Timestamp, 10)
	dst = append(dst, " tid="...)
	if names != nil {
		dst = append(dst, names.ThreadModule(e.ThreadID)...)
	} else {
		dst = strconv.AppendUint(dst, uint64(e.ThreadID), 10)
	}
	dst = append(dst, " pid="...)
	if names != nil {
		dst = append(dst, names.ProcessName(e.ProcessID)...)
	} else {
		dst = strconv.AppendUint(dst, uint64(e.ProcessID), 10)
	}
	dst = append(dst, ' ')
	if f.Template != "" {
		dst = e.Snapshot.FormatWith(dst, f.Template)
	} else {
		dst = e.Snapshot.FormatAll(dst)
	}
	dst = append(dst, '\n')
	return dst
}
