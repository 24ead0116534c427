// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plog

// StatsSnapshot is a point-in-time read of every counter this Core tracks,
// merging its own Stats with whichever pipeline task (Writer, MProc, or
// SharedReader) is running underneath it.
type StatsSnapshot struct {
	OverflowDrop    uint64
	SinkErrors      uint64
	FormatterPanics uint64
	SharedDropped   uint64
}

// StatsSnapshot reads every counter relevant to this Core's Mode.
func (c *Core) StatsSnapshot() StatsSnapshot {
	s := StatsSnapshot{
		OverflowDrop:    c.Stats.OverflowDrop.Load(),
		SinkErrors:      c.Stats.SinkErrors.Load(),
		FormatterPanics: c.Stats.FormatterPanics.Load(),
	}
	switch c.mode {
	case Async:
		s.SinkErrors += c.writer.Stats.SinkErrors.Load()
		s.FormatterPanics += c.writer.Stats.FormatterPanics.Load()
	case MProc:
		if c.reader != nil {
			s.SinkErrors += c.reader.Stats.SinkErrors.Load()
			s.FormatterPanics += c.reader.Stats.FormatterPanics.Load()
		}
		if c.mproc != nil {
			s.SharedDropped = c.mproc.Stats.Dropped.Load()
		}
	}
	return s
}
