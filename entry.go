// Copyright 2026 the plog authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package plog

import "code.hybscloud.com/plog/record"

// Entry is LogEntry (spec.md §3). Aliased from package record so plog,
// pipeline, sink, and ring can all refer to the same concrete type without
// importing each other.
type Entry = record.Entry

// Level is a log severity, aliased from package record.
type Level = record.Level

const (
	Trace = record.Trace
	Debug = record.Debug
	Info  = record.Info
	Warn  = record.Warn
	Error = record.Error
	Fatal = record.Fatal
)
